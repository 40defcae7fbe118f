package workout

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned by ParseDuration for input that is neither
// "mm:ss" nor a bare non-negative number.
var ErrInvalidDuration = errors.New("invalid duration")

var numberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ParseDuration converts user input into whole seconds.
// Accepted shapes: "" (0), "mm:ss" and a bare number of seconds.
func ParseDuration(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := parseNumber(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		if v < 0 {
			return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, input)
		}
		return toSeconds(math.Trunc(v), input)
	case 2:
		mm, err := parseNumber(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		ss, err := parseNumber(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		total := math.Trunc(mm)*60 + math.Trunc(ss)
		if total < 0 {
			return 0, nil
		}
		return toSeconds(total, input)
	default:
		return 0, fmt.Errorf("%w: %q has too many colons", ErrInvalidDuration, input)
	}
}

// toSeconds converts a non-negative whole number of seconds, rejecting values
// an int cannot hold.
func toSeconds(v float64, input string) (int, error) {
	if v >= math.MaxInt {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidDuration, input)
	}
	return int(v), nil
}

// ParseDurationOrZero is ParseDuration for optional fields: invalid input reads as 0.
func ParseDurationOrZero(input string) int {
	v, err := ParseDuration(input)
	if err != nil {
		return 0
	}
	return v
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !numberRe.MatchString(s) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// FormatClock renders seconds as mm:ss, or h:mm:ss from one hour up.
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
