// Package rewards computes quest rewards and missed-quest penalties.
//
// Multipliers are kept in tenths so every result is an exact integer floor
// of the documented real-valued formula.
package rewards

// Base values of a reward before multipliers.
const (
	BaseXP         = 100
	BaseCoins      = 50
	BaseStatPoints = 5
)

// BasePenalty is the per-stat loss for a single missed period.
const BasePenalty = 1

// Multiplier caps, in tenths.
const (
	maxStreakTenths  = 50 // 5x
	maxPenaltyTenths = 30 // 3x
)

// Bundle is what a completed quest pays out.
type Bundle struct {
	XP         int `json:"xp"`
	Coins      int `json:"coins"`
	StatPoints int `json:"stat_points"`
}

// Reward returns the bundle for completing a quest of the given difficulty
// while holding streak. The streak multiplier is min(1+0.1*streak, 5) and
// the difficulty multiplier is 1+0.2*difficulty. Negative inputs count as 0.
func Reward(streak, difficulty int) Bundle {
	s := StreakMultiplierTenths(streak)
	d := DifficultyMultiplierTenths(difficulty)
	return Bundle{
		XP:         scale(BaseXP, s, d),
		Coins:      scale(BaseCoins, s, d),
		StatPoints: scale(BaseStatPoints, s, d),
	}
}

// StreakMultiplierTenths returns min(10+streak, 50).
func StreakMultiplierTenths(streak int) int {
	if streak < 0 {
		streak = 0
	}
	if streak >= maxStreakTenths-10 {
		return maxStreakTenths
	}
	return 10 + streak
}

// DifficultyMultiplierTenths returns 10+2*difficulty.
func DifficultyMultiplierTenths(difficulty int) int {
	if difficulty < 0 {
		difficulty = 0
	}
	return 10 + 2*difficulty
}

func scale(base, streakTenths, difficultyTenths int) int {
	return int(int64(base) * int64(streakTenths) * int64(difficultyTenths) / 100)
}
