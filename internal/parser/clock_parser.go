package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

var (
	// ErrInvalidFormat means the input is not an H:MM / HH:MM string.
	ErrInvalidFormat = errors.New("invalid time format, use HH:MM")
	// ErrOutOfRange means the hour or minute is outside the 24-hour clock.
	ErrOutOfRange = errors.New("time out of range, use 00:00-23:59")
)

// ParseClockTime parses a 24-hour "HH:MM" wall-clock time. A single-digit
// hour is accepted ("9:30"); anything else fails with ErrInvalidFormat, and
// an hour above 23 or minute above 59 fails with ErrOutOfRange.
func ParseClockTime(text string) (timeutil.TimeOfDay, error) {
	var zero timeutil.TimeOfDay

	s := strings.TrimSpace(text)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	if len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hh[0] == '+' || hh[0] == '-' {
		return zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 {
		return zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	if hour > 23 || minute > 59 {
		return zero, fmt.Errorf("%w: %q", ErrOutOfRange, text)
	}

	return timeutil.TimeOfDay{Hour: hour, Minute: minute}, nil
}
