package game

// playedTracks is the bounded FIFO of recently played track ids. It holds
// runsBeforeRepeat runs of tracksPerRun tracks and is trimmed one run at a
// time.
type playedTracks struct {
	batch    int
	capacity int
	ids      []string
	seen     map[string]struct{}
}

func newPlayedTracks(tracksPerRun, runsBeforeRepeat int) *playedTracks {
	return &playedTracks{
		batch:    tracksPerRun,
		capacity: tracksPerRun * runsBeforeRepeat,
		seen:     make(map[string]struct{}),
	}
}

func (p *playedTracks) contains(id string) bool {
	_, ok := p.seen[id]
	return ok
}

// push appends id. A full list first drops its oldest run so the length
// never goes past capacity.
func (p *playedTracks) push(id string) {
	if p.full() {
		p.evictRun()
	}
	p.ids = append(p.ids, id)
	p.seen[id] = struct{}{}
}

func (p *playedTracks) full() bool {
	return len(p.ids) >= p.capacity
}

// evictRun drops the oldest run of tracks.
func (p *playedTracks) evictRun() {
	n := min(p.batch, len(p.ids))
	for _, id := range p.ids[:n] {
		delete(p.seen, id)
	}
	p.ids = append(p.ids[:0:0], p.ids[n:]...)
}

func (p *playedTracks) len() int { return len(p.ids) }

func (p *playedTracks) list() []string {
	return append([]string(nil), p.ids...)
}
