// Package formula implements the game's published single-song rating formula
// and its brute-force inversion over the score-constant domain.
//
// All arithmetic is integer fixed-point. Score constants and rank coefficients
// are carried in tenths, achievements in units of 1e-4 percent, so that the
// rating of a play is reproduced bit-for-bit and candidate matching can use
// exact equality rather than a tolerance.
package formula

import "fmt"

// Fixed-point bounds of the formula's input domains.
const (
	// ConstantMin and ConstantMax bound the score-constant domain, in tenths
	// of a level (1.0 through 15.0).
	ConstantMin ScoreConstant = 10
	ConstantMax ScoreConstant = 150

	// AchievementMax is the highest achievement the game awards (101.0000%).
	AchievementMax AchievementValue = 1_010_000

	// achievementRatingCap caps the achievement used inside the rating
	// computation (100.5000%); play results above it earn no extra rating.
	achievementRatingCap AchievementValue = 1_005_000

	// ratingDivisor folds the three fixed-point scales back into whole
	// rating points: tenths * tenths * 1e-4 percent / 1e8.
	ratingDivisor = 100_000_000
)

// ScoreConstant is a hidden per-chart difficulty rating in tenths of a level.
type ScoreConstant int

// Valid reports whether c lies inside the constant domain.
func (c ScoreConstant) Valid() bool {
	return c >= ConstantMin && c <= ConstantMax
}

func (c ScoreConstant) String() string {
	return fmt.Sprintf("%d.%d", int(c)/10, int(c)%10)
}

// Domain returns the full score-constant domain in ascending order.
// The result is freshly allocated; callers may mutate it.
func Domain() []ScoreConstant {
	out := make([]ScoreConstant, 0, ConstantMax-ConstantMin+1)
	for c := ConstantMin; c <= ConstantMax; c++ {
		out = append(out, c)
	}
	return out
}

// AchievementValue is a play's score percentage in units of 1e-4 percent,
// e.g. 1_005_000 for 100.5000%.
type AchievementValue int

// NewAchievementValue validates a raw achievement reading from a collaborator.
func NewAchievementValue(v int) (AchievementValue, error) {
	a := AchievementValue(v)
	if a < 0 || a > AchievementMax {
		return 0, fmt.Errorf("%w: %d", ErrAchievementOutOfRange, v)
	}
	return a, nil
}

// Valid reports whether a lies inside the range the game can award.
func (a AchievementValue) Valid() bool {
	return a >= 0 && a <= AchievementMax
}

func (a AchievementValue) String() string {
	return fmt.Sprintf("%d.%04d%%", int(a)/10_000, int(a)%10_000)
}

// RankCoefficient is the step-function multiplier for an achievement band,
// in tenths (224 for SSS+, 216 for SSS, and so on down the table).
type RankCoefficient int

// rankTable maps achievement floors to coefficients, highest band first.
var rankTable = []struct {
	floor AchievementValue
	coef  RankCoefficient
}{
	{1_005_000, 224},
	{1_000_000, 216},
	{995_000, 211},
	{990_000, 208},
	{980_000, 203},
	{970_000, 200},
	{940_000, 168},
	{900_000, 152},
	{800_000, 136},
	{750_000, 120},
	{700_000, 112},
	{600_000, 96},
	{500_000, 80},
	{400_000, 64},
	{300_000, 48},
	{200_000, 32},
	{100_000, 16},
}

// RankCoef returns the rank coefficient for an achievement value.
func RankCoef(a AchievementValue) RankCoefficient {
	for _, band := range rankTable {
		if a >= band.floor {
			return band.coef
		}
	}
	return 0
}

// RatingValue is the whole-point rating contribution of one play.
type RatingValue int

// SingleSongRating computes the rating of a play. It is pure and, for fixed
// achievement and coefficient, monotonically non-decreasing in the constant.
func SingleSongRating(c ScoreConstant, a AchievementValue, k RankCoefficient) RatingValue {
	if a > achievementRatingCap {
		a = achievementRatingCap
	}
	return RatingValue(int64(c) * int64(a) * int64(k) / ratingDivisor)
}

// CandidatesForDelta inverts the formula by brute force: it returns every
// constant in the domain whose rating at achievement a equals delta exactly.
// The result is ascending and may be empty.
func CandidatesForDelta(delta RatingValue, a AchievementValue) []ScoreConstant {
	coef := RankCoef(a)
	var out []ScoreConstant
	for c := ConstantMin; c <= ConstantMax; c++ {
		if SingleSongRating(c, a, coef) == delta {
			out = append(out, c)
		}
	}
	return out
}
