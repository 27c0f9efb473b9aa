package trigger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronValidate(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		timezone string
		wantErr  bool
	}{
		{name: "standard", schedule: "0 6 * * *", timezone: "Europe/Berlin"},
		{name: "descriptor", schedule: "@hourly"},
		{name: "missing schedule", wantErr: true},
		{name: "bad schedule", schedule: "every morning", wantErr: true},
		{name: "bad timezone", schedule: "@daily", timezone: "Mars/Olympus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCron(tt.schedule, tt.timezone).Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCronStartRejectsInvalidSchedule(t *testing.T) {
	_, err := NewCron("", "").Start(context.Background(), "scrape")
	require.Error(t, err)
}

func TestCronStopClosesEvents(t *testing.T) {
	c := NewCron("@daily", "Europe/Berlin")
	events, err := c.Start(context.Background(), "scrape")
	require.NoError(t, err)

	c.Stop()
	c.Stop()

	_, open := <-events
	assert.False(t, open)
}

func TestRunCallsJobPerTick(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var calls atomic.Int32
	err := Run(ctx, NewCron("@every 1s", ""), "scrape", func(context.Context) error {
		if calls.Add(1) >= 2 {
			cancel()
		}
		return errors.New("keeps going")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}
