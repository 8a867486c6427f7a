package signals

import (
	"fmt"
	"strings"
)

// Mode selects a signal budget.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeFull  Mode = "full"
)

// ParseMode converts user input into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeQuick:
		return ModeQuick, nil
	case ModeFull, "":
		return ModeFull, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want quick or full)", value)
	}
}

func (m Mode) String() string { return string(m) }

// Budget caps how much of a folder Collect reads. Zero byte caps mean
// unlimited.
type Budget struct {
	MaxDepth     int
	MaxIniFiles  int
	PerFileBytes int64
	TotalBytes   int64
	MaxNameItems int
}

// BudgetFor returns the budget of mode. Unknown modes get the Quick budget.
func BudgetFor(mode Mode) Budget {
	if mode == ModeFull {
		return Budget{
			MaxDepth:     3,
			MaxIniFiles:  10,
			TotalBytes:   1 << 20,
			MaxNameItems: 500,
		}
	}
	return Budget{
		MaxDepth:     1,
		MaxIniFiles:  2,
		PerFileBytes: 256 << 10,
		MaxNameItems: 150,
	}
}

// readLimit returns how many bytes the next file may consume given what has
// been read so far, or zero once the global cap is spent.
func (b Budget) readLimit(scanned int64) int64 {
	limit := int64(-1)
	if b.PerFileBytes > 0 {
		limit = b.PerFileBytes
	}
	if b.TotalBytes > 0 {
		remaining := b.TotalBytes - scanned
		if remaining <= 0 {
			return 0
		}
		if limit < 0 || remaining < limit {
			limit = remaining
		}
	}
	return limit
}
