package game

import (
	"slices"

	"github.com/scythe504/tunequiz-backend/internal"
)

const podiumSize = 3

// Award is what a full completion is worth.
type Award struct {
	Tier internal.Tier
	// Points is added to the cumulative score.
	Points int
	// RoundPoints replaces the round score and is the same for both paths.
	RoundPoints int
}

// ScoreCompletion returns the award for the player completing the track at
// position finishLine. A sequential completion already banked one point on
// its partial match, so it gets one point less than a simultaneous one.
func ScoreCompletion(finishLine int, simultaneous bool) Award {
	a := Award{Tier: tierAt(finishLine)}
	switch a.Tier {
	case internal.TierGold:
		a.RoundPoints = 6
	case internal.TierSilver:
		a.RoundPoints = 5
	case internal.TierBronze:
		a.RoundPoints = 4
	default:
		a.RoundPoints = 3
	}

	a.Points = a.RoundPoints
	if !simultaneous {
		a.Points--
	}
	return a
}

func tierAt(finishLine int) internal.Tier {
	switch finishLine {
	case 1:
		return internal.TierGold
	case 2:
		return internal.TierSilver
	case 3:
		return internal.TierBronze
	default:
		return internal.TierNone
	}
}

// Podium returns the top three records by points. Ties keep the order of
// records.
func Podium(records []internal.UserRecord) []internal.UserRecord {
	podium := slices.Clone(records)
	slices.SortStableFunc(podium, func(a, b internal.UserRecord) int {
		return b.Points - a.Points
	})
	if len(podium) > podiumSize {
		podium = podium[:podiumSize]
	}
	return podium
}
