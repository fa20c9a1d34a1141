package internal

import "time"

// ConnID identifies one live transport connection.
type ConnID string

// Match is a player's progress on the current track.
type Match string

const (
	MatchNone   Match = ""
	MatchArtist Match = "artist"
	MatchTitle  Match = "title"
	MatchBoth   Match = "both"
)

// Tier is the podium bucket of a full completion within one track.
type Tier int

const (
	TierNone Tier = iota
	TierGold
	TierSilver
	TierBronze
)

func (t Tier) String() string {
	switch t {
	case TierGold:
		return "gold"
	case TierSilver:
		return "silver"
	case TierBronze:
		return "bronze"
	default:
		return "none"
	}
}

// TrackMetadata is what the catalog stores for one track.
type TrackMetadata struct {
	ArtistName string `json:"artistName"`
	TrackName  string `json:"trackName"`
	PreviewURL string `json:"previewUrl"`
	ArtworkURL string `json:"artworkUrl"`
	ViewURL    string `json:"trackViewUrl"`
}

// Track is the room's current track: the catalog metadata plus the
// lowercased answers derived from it.
type Track struct {
	ID     string `json:"-"`
	Artist string `json:"-"`
	Title  string `json:"-"`
	Feat   string `json:"-"`
	TrackMetadata
}

// Ban is one address ban written by a kick.
type Ban struct {
	Address  string
	Nickname string
	Reason   string
	Duration time.Duration
}

// StatsUpdate carries the long-term statistics of one scoring event.
// Nil fields are not part of the event.
type StatsUpdate struct {
	Points      *int   `json:"points,omitempty"`
	UserScore   *int   `json:"userscore,omitempty"`
	GuessTime   *int64 `json:"guesstime,omitempty"`
	PodiumPlace *int   `json:"podiumplace,omitempty"`
	Gold        bool   `json:"gold,omitempty"`
	Silver      bool   `json:"silver,omitempty"`
	Bronze      bool   `json:"bronze,omitempty"`
}

func IntPtr(v int) *int       { return &v }
func Int64Ptr(v int64) *int64 { return &v }
