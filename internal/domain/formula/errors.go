package formula

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrAchievementOutOfRange = errors.New("achievement value out of range")
)
