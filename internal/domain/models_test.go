package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayMask(t *testing.T) {
	m := MaskOf(time.Monday, time.Wednesday)
	assert.True(t, m.Contains(time.Monday))
	assert.True(t, m.Contains(time.Wednesday))
	assert.False(t, m.Contains(time.Sunday))

	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.True(t, EveryDay.Contains(d))
	}
	assert.False(t, Weekdays.Contains(time.Saturday))
	assert.False(t, Weekdays.Contains(time.Sunday))
	assert.True(t, Weekend.Contains(time.Saturday))
	assert.True(t, Weekend.Contains(time.Sunday))
	assert.False(t, Weekend.Contains(time.Friday))
}

func TestWeekendOnly(t *testing.T) {
	assert.True(t, Weekend.WeekendOnly())
	assert.True(t, MaskOf(time.Saturday).WeekendOnly())
	assert.False(t, EveryDay.WeekendOnly())
	assert.False(t, MaskOf(time.Friday, time.Saturday).WeekendOnly())
	assert.False(t, WeekdayMask(0).WeekendOnly())
}

func TestWindowContains(t *testing.T) {
	day := TariffRule{StartMinute: 6 * 60, EndMinute: 22 * 60}
	assert.True(t, day.WindowContains(6*60))
	assert.True(t, day.WindowContains(12*60))
	assert.False(t, day.WindowContains(22*60), "end is exclusive")
	assert.False(t, day.WindowContains(3*60))

	night := TariffRule{StartMinute: 22 * 60, EndMinute: 6 * 60}
	assert.True(t, night.WindowContains(23*60))
	assert.True(t, night.WindowContains(0))
	assert.True(t, night.WindowContains(5*60+59))
	assert.False(t, night.WindowContains(6*60))
	assert.False(t, night.WindowContains(12*60))

	degenerate := TariffRule{StartMinute: 300, EndMinute: 300}
	assert.True(t, degenerate.WindowContains(0))
	assert.True(t, degenerate.WindowContains(300))
}

func TestFullDay(t *testing.T) {
	assert.True(t, TariffRule{StartMinute: 0, EndMinute: 24 * 60}.FullDay())
	assert.True(t, TariffRule{StartMinute: 480, EndMinute: 480}.FullDay())
	assert.False(t, TariffRule{StartMinute: 22 * 60, EndMinute: 6 * 60}.FullDay())
}

func TestSessionActive(t *testing.T) {
	s := ParkingSession{}
	assert.True(t, s.Active())

	now := time.Now()
	s.ExitAt = &now
	assert.False(t, s.Active())
}
