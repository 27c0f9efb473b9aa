package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDurationExtended_DaysWeeksAndFallback(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1w2d3h", (7*24 + 2*24 + 3) * time.Hour},
		{"1.5d", 36 * time.Hour},
		{"-2w", -14 * 24 * time.Hour},
		{"90m", 90 * time.Minute},
		{"2h", 2 * time.Hour},
	}
	for _, tc := range cases {
		got, err := parseDurationExtended(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDurationExtended_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "3x", "2d3x", "-", "d"} {
		_, err := parseDurationExtended(in)
		assert.Error(t, err, in)
	}
}

func TestDurationYAML(t *testing.T) {
	var v struct {
		D Duration `yaml:"d"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("d: 1d12h"), &v))
	assert.Equal(t, 36*time.Hour, v.D.Std())

	assert.Error(t, yaml.Unmarshal([]byte("d: soon"), &v))
}
