package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		name   string
		ttl    time.Duration
		window time.Duration
		want   int
	}{
		{"whole seconds", 30 * time.Second, time.Minute, 30},
		{"rounds up", 1500 * time.Millisecond, time.Minute, 2},
		{"sub-second floor", 200 * time.Millisecond, time.Minute, 1},
		{"missing ttl falls back to window", 0, time.Minute, 60},
		{"negative ttl falls back to window", -1, 30 * time.Second, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RetryAfterSeconds(tc.ttl, tc.window))
		})
	}
}
