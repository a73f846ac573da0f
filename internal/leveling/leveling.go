// Package leveling owns the experience curve. Every caller goes through
// these functions; nothing else in the repo computes levels.
package leveling

import (
	"math"

	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/pkg/entity"
)

// ExperienceForLevel returns the cost of paying for the given level on the
// exponential curve floor(100 * 1.5^(level-1)).
func ExperienceForLevel(level int) (int, error) {
	if level < 1 {
		return 0, errorvalues.ErrInvalidLevel
	}
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1)))), nil
}

// LevelFromExperience returns the highest level fully paid for: the cost of
// each level is subtracted greedily starting at level 1, and the result is
// how many levels the total covered. A fresh user with less than
// ExperienceForLevel(1) is level 0.
func LevelFromExperience(totalExperience int) (int, error) {
	if totalExperience < 0 {
		return 0, errorvalues.ErrNegativeExperience
	}
	remaining := totalExperience
	paid := 0
	for {
		cost, err := ExperienceForLevel(paid + 1)
		if err != nil {
			return 0, err
		}
		if remaining < cost {
			return paid, nil
		}
		remaining -= cost
		paid++
	}
}

// ExperienceToNextLevel returns how much experience is still missing to pay
// for the next level. The exponential curve is unbounded, so there is no
// maximum-level case.
func ExperienceToNextLevel(totalExperience int) (int, error) {
	if totalExperience < 0 {
		return 0, errorvalues.ErrNegativeExperience
	}
	remaining := totalExperience
	paid := 0
	for {
		cost, err := ExperienceForLevel(paid + 1)
		if err != nil {
			return 0, err
		}
		if remaining < cost {
			return cost - remaining, nil
		}
		remaining -= cost
		paid++
	}
}

// AwardExperience returns a copy of the progression with the amount added
// and the level recomputed. Rewards are one-way; there is no retraction
// path, so negative amounts are rejected.
func AwardExperience(p entity.UserProgression, amount int) (entity.UserProgression, error) {
	if amount < 0 {
		return entity.UserProgression{}, errorvalues.ErrNegativeExperience
	}
	p.TotalExperience += amount
	level, err := LevelFromExperience(p.TotalExperience)
	if err != nil {
		return entity.UserProgression{}, err
	}
	p.Level = level
	return p, nil
}
