// Package store holds the persistent collaborators of the game rooms: the
// track catalog, the account directory, address bans and user statistics.
package store

import (
	"errors"

	"github.com/scythe504/tunequiz-backend/internal"
)

var ErrNotFound = errors.New("not found")

// UserStats are the long-term statistics of a registered user.
type UserStats struct {
	Nickname       string `json:"nickname"`
	Points         int64  `json:"points"`
	BestScore      int    `json:"bestscore"`
	Guessed        int    `json:"guessed"`
	TotalGuessTime int64  `json:"totguesstime"`
	// BestGuessTime is zero until the first completed track.
	BestGuessTime int64 `json:"bestguesstime"`
	Golds         int   `json:"golds"`
	Silvers       int   `json:"silvers"`
	Bronzes       int   `json:"bronzes"`
	FirstPlaces   int   `json:"firstplaces"`
	SecondPlaces  int   `json:"secondplaces"`
	ThirdPlaces   int   `json:"thirdplaces"`
}

// statsDelta is the increment a StatsUpdate applies to UserStats.
type statsDelta struct {
	points        int
	bestScore     int
	guessed       int
	guessTime     int64
	bestGuessTime *int64
	golds         int
	silvers       int
	bronzes       int
	firsts        int
	seconds       int
	thirds        int
}

func deltaOf(u internal.StatsUpdate) statsDelta {
	var d statsDelta
	if u.Points != nil {
		d.points = *u.Points
	}
	if u.UserScore != nil {
		d.bestScore = *u.UserScore
	}
	if u.GuessTime != nil {
		d.guessed = 1
		d.guessTime = *u.GuessTime
		d.bestGuessTime = u.GuessTime
	}
	d.golds = b2i(u.Gold)
	d.silvers = b2i(u.Silver)
	d.bronzes = b2i(u.Bronze)
	if u.PodiumPlace != nil {
		switch *u.PodiumPlace {
		case 1:
			d.firsts = 1
		case 2:
			d.seconds = 1
		case 3:
			d.thirds = 1
		}
	}
	return d
}

func (s *UserStats) apply(d statsDelta) {
	s.Points += int64(d.points)
	s.BestScore = max(s.BestScore, d.bestScore)
	s.Guessed += d.guessed
	s.TotalGuessTime += d.guessTime
	if d.bestGuessTime != nil && (s.BestGuessTime == 0 || *d.bestGuessTime < s.BestGuessTime) {
		s.BestGuessTime = *d.bestGuessTime
	}
	s.Golds += d.golds
	s.Silvers += d.silvers
	s.Bronzes += d.bronzes
	s.FirstPlaces += d.firsts
	s.SecondPlaces += d.seconds
	s.ThirdPlaces += d.thirds
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
