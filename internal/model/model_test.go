package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFeaturedProduct_Overlaps(t *testing.T) {
	window := FeaturedProduct{StartDate: date("2024-01-05"), EndDate: date("2024-01-10")}

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical", "2024-01-05", "2024-01-10", true},
		{"contained", "2024-01-06", "2024-01-09", true},
		{"contains", "2024-01-01", "2024-01-31", true},
		{"touches start day", "2024-01-01", "2024-01-05", true},
		{"touches end day", "2024-01-10", "2024-01-20", true},
		{"ends the day before", "2024-01-01", "2024-01-04", false},
		{"starts the day after", "2024-01-11", "2024-01-20", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, window.Overlaps(date(tc.start), date(tc.end)))

			// Overlap is symmetric.
			other := FeaturedProduct{StartDate: date(tc.start), EndDate: date(tc.end)}
			assert.Equal(t, tc.want, other.Overlaps(window.StartDate, window.EndDate))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusRefunded.Valid())
	assert.False(t, OrderStatus("teleported").Valid())
	assert.False(t, OrderStatus("").Valid())
}
