// Package deadline normalizes partially specified deadline strings
// ("15", "15.03", "15.03.2025", optionally with "H:MM") into canonical
// absolute date-times, inferring the next future occurrence for partial
// dates.
package deadline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout of the canonical deadline string.
const Layout = "02.01.2006 15:04"

// DefaultTime is appended when the user omits the time part.
const DefaultTime = "23:59"

// ErrFormat is returned for any unparsable or calendar-invalid input.
var ErrFormat = errors.New("invalid deadline format")

// Normalized is the result of normalizing a deadline string.
type Normalized struct {
	At   time.Time // absolute instant in the parser's timezone
	Text string    // canonical "DD.MM.YYYY H:MM" representation
}

// Parser normalizes deadline strings relative to a reference time.
type Parser struct {
	location *time.Location
}

// NewParser creates a deadline parser for the given IANA timezone string,
// e.g. "Europe/Moscow".
func NewParser(timezone string) (*Parser, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Parser{location: loc}, nil
}

// Normalize converts a deadline string to its canonical absolute form.
// Accepted grammar: "<date>[ <time>]" where <date> is D, D.M or D.M.Y
// (dot-separated numbers) and <time> is H:MM, defaulting to 23:59.
//
// Partial dates resolve to the next occurrence relative to now:
//   - D: current month/year; if the day has already passed, next month
//     (month+1, wrapping to January with year+1). The month increment is
//     deliberately plain: a day valid in the current month but invalid in
//     the next (e.g. "31" in August) fails the final calendar check rather
//     than being clamped.
//   - D.M: current year; if (month, day) has already passed, next year.
//   - D.M.Y: taken verbatim, no inference.
func (p *Parser) Normalize(text string, now time.Time) (Normalized, error) {
	now = now.In(p.location)

	parts := strings.Fields(text)
	if len(parts) == 0 || len(parts) > 2 {
		return Normalized{}, fmt.Errorf("%w: use DD, DD.MM or DD.MM.YYYY, optionally with HH:MM", ErrFormat)
	}
	datePart := parts[0]
	timePart := DefaultTime
	if len(parts) == 2 {
		timePart = parts[1]
	}

	comps := strings.Split(datePart, ".")
	var day, month, year int
	var err error

	switch len(comps) {
	case 1: // day only
		day, err = atoi(comps[0])
		if err != nil {
			return Normalized{}, err
		}
		month = int(now.Month())
		year = now.Year()
		if day < now.Day() {
			month++
			if month > 12 {
				month = 1
				year++
			}
		}

	case 2: // day and month
		day, err = atoi(comps[0])
		if err != nil {
			return Normalized{}, err
		}
		month, err = atoi(comps[1])
		if err != nil {
			return Normalized{}, err
		}
		year = now.Year()
		if month < int(now.Month()) || (month == int(now.Month()) && day < now.Day()) {
			year++
		}

	case 3: // full date, verbatim
		day, err = atoi(comps[0])
		if err != nil {
			return Normalized{}, err
		}
		month, err = atoi(comps[1])
		if err != nil {
			return Normalized{}, err
		}
		year, err = atoi(comps[2])
		if err != nil {
			return Normalized{}, err
		}

	default:
		return Normalized{}, fmt.Errorf("%w: use DD, DD.MM or DD.MM.YYYY, optionally with HH:MM", ErrFormat)
	}

	canonical := fmt.Sprintf("%02d.%02d.%04d %s", day, month, year, timePart)

	// Strict parse rejects calendar-invalid dates (31.02, day 32) instead
	// of clamping them.
	at, err := time.ParseInLocation(Layout, canonical, p.location)
	if err != nil {
		return Normalized{}, fmt.Errorf("%w: %q is not a valid date", ErrFormat, text)
	}

	return Normalized{At: at, Text: canonical}, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrFormat, s)
	}
	return n, nil
}
