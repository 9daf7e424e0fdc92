package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettlementWindow_CoversThePreviousWholeWeek(t *testing.T) {
	// A Monday 00:00 firing settles the week that just ended.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	start, end := settlementWindow(monday)

	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, monday, end)
}

func TestSettlementWindow_MidWeekStillSettlesTheLastCompletedWeek(t *testing.T) {
	thursday := time.Date(2026, 9, 3, 15, 42, 7, 0, time.UTC)

	start, end := settlementWindow(thursday)

	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestSettlementWindow_SundayBelongsToTheRunningWeek(t *testing.T) {
	sunday := time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC)

	start, end := settlementWindow(sunday)

	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), end)
}
