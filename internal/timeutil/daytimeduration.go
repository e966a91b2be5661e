package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

func ParseDayTimeDuration(s string) (DayTimeDuration, error) {
	var d DayTimeDuration
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("timeutil.ParseDayTimeDuration: %w", err)
	}

	return d, nil
}

type dayTimeDurationSegment struct {
	c byte
	d time.Duration
	t bool
}

var dayTimeDurationSegments = []dayTimeDurationSegment{
	{'D', time.Hour * 24, false},
	{'H', time.Hour, true},
	{'M', time.Minute, true},
	{'S', time.Second, true},
}

// DayTimeDuration is an ISO 8601 duration limited to days, hours, minutes
// and seconds, as found in schema.org "duration" properties.
type DayTimeDuration int64

func (d DayTimeDuration) Duration() time.Duration {
	return time.Duration(d)
}

// Seconds returns the whole number of seconds, dropping any fraction.
func (d DayTimeDuration) Seconds() int64 {
	return int64(time.Duration(d) / time.Second)
}

func (d *DayTimeDuration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: empty duration string")
	}

	var sign int64 = 1
	if b[0] == '-' {
		sign = -1
		b = b[1:]
	}

	if len(b) == 0 || b[0] != 'P' {
		return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: could not find 'P' separator")
	}
	b = b[1:]

	total := int64(0)
	rest := string(b)
	readT := false

	for _, e := range dayTimeDurationSegments {
		if len(rest) == 0 {
			break
		}

		if rest[0] == 'T' && !e.t {
			continue
		}

		if e.t && !readT {
			if rest[0] != 'T' {
				return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: could not find 'T' separator")
			}
			rest = rest[1:]

			readT = true
		}

		var i int
		var sawDecimal bool
	loop:
		for i = 0; i < len(rest); i++ {
			switch {
			case rest[i] >= '0' && rest[i] <= '9':
				// continue
			case rest[i] == '.' && sawDecimal == false:
				sawDecimal = true
				// continue
			default:
				break loop
			}
		}

		if i == len(rest) {
			return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: segment %q has no designator", rest)
		}

		if rest[i] != e.c {
			continue
		}

		f, err := strconv.ParseFloat(rest[:i], 64)
		if err != nil {
			return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: couldn't parse segment '%c': %w", e.c, err)
		}
		rest = rest[i+1:]

		if math.Remainder(f, 1) != 0 && e.c != 'S' {
			return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: segment '%c' can not have a fractional component", e.c)
		}

		total = total + int64(f*float64(e.d))
	}

	if len(rest) != 0 {
		return fmt.Errorf("timeutil.DayTimeDuration.UnmarshalText: leftover data after parsing is complete: %q", rest)
	}

	*d = DayTimeDuration(sign * total)

	return nil
}
