package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFineFor(t *testing.T) {
	due := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rate := decimal.NewFromInt(1)

	tests := []struct {
		name string
		ref  time.Time
		want string
	}{
		{"before due", due.Add(-time.Hour), "0"},
		{"exactly due", due, "0"},
		{"one nanosecond late", due.Add(time.Nanosecond), "1"},
		{"exactly one day late", due.Add(day), "1"},
		{"two days three hours late", due.Add(2*day + 3*time.Hour), "3"},
		{"returned on day sixteen of a fourteen day loan", due.Add(2 * day), "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FineFor(due, tt.ref, rate)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestFineFor_Rate(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	got := FineFor(due, due.Add(3*day), decimal.RequireFromString("0.25"))
	assert.Equal(t, "0.75", got.StringFixed(2))

	assert.True(t, FineFor(due, due.Add(5*day), decimal.Zero).IsZero())
}
