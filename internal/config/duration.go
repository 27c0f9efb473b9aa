package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from YAML with day and week units.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := parseDurationExtended(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

var hoursPerUnit = map[string]float64{"d": 24, "w": 7 * 24}

// parseDurationExtended accepts Go durations plus d (24h) and w (7d) units,
// e.g. "2h", "7d", "1w2d", "1.5d", "-2w".
func parseDurationExtended(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.ContainsAny(s, "dw") {
		return time.ParseDuration(s)
	}

	var b strings.Builder
	if s[0] == '+' || s[0] == '-' {
		b.WriteByte(s[0])
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	for s != "" {
		num := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' })
		if num <= 0 {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		value, err := strconv.ParseFloat(s[:num], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		rest := s[num:]
		unitLen := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) && r != 'µ' })
		if unitLen < 0 {
			unitLen = len(rest)
		}
		if unitLen == 0 {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		unit := rest[:unitLen]
		if hours, ok := hoursPerUnit[unit]; ok {
			b.WriteString(strconv.FormatFloat(value*hours, 'f', -1, 64))
			b.WriteByte('h')
		} else {
			b.WriteString(s[:num])
			b.WriteString(unit)
		}
		s = rest[unitLen:]
	}
	return time.ParseDuration(b.String())
}
