package leave_test

import (
	"testing"
	"time"

	"agency-hr/internal/leave"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, leave.InclusiveDays(day(2026, 3, 2), day(2026, 3, 2)))
	assert.Equal(t, 5, leave.InclusiveDays(day(2026, 3, 2), day(2026, 3, 6)))
	assert.Equal(t, 7, leave.InclusiveDays(day(2026, 3, 2), day(2026, 3, 8)))
}

func TestCalculateBalance(t *testing.T) {
	t.Run("debits approved requests in year", func(t *testing.T) {
		leaves := []leave.Leave{
			{Status: leave.StatusApproved, StartDate: day(2026, 3, 2), EndDate: day(2026, 3, 6)},
		}

		b := leave.CalculateBalance(22, leaves, 2026)

		assert.Equal(t, 22, b.Annual)
		assert.Equal(t, 5, b.Taken)
		assert.Equal(t, 17, b.Balance)
	})

	t.Run("clamps displayed balance at zero", func(t *testing.T) {
		leaves := []leave.Leave{
			{Status: leave.StatusApproved, StartDate: day(2026, 2, 2), EndDate: day(2026, 2, 16)},
		}

		b := leave.CalculateBalance(10, leaves, 2026)

		assert.Equal(t, 10, b.Annual)
		assert.Equal(t, 15, b.Taken)
		assert.Equal(t, 0, b.Balance)
	})

	t.Run("pending and rejected never count", func(t *testing.T) {
		leaves := []leave.Leave{
			{Status: leave.StatusPending, StartDate: day(2026, 4, 1), EndDate: day(2026, 4, 10)},
			{Status: leave.StatusRejected, StartDate: day(2026, 5, 1), EndDate: day(2026, 5, 10)},
		}

		b := leave.CalculateBalance(22, leaves, 2026)

		assert.Equal(t, 0, b.Taken)
		assert.Equal(t, 22, b.Balance)
	})

	t.Run("requests starting in another year are excluded", func(t *testing.T) {
		leaves := []leave.Leave{
			{Status: leave.StatusApproved, StartDate: day(2025, 12, 29), EndDate: day(2026, 1, 2)},
			{Status: leave.StatusApproved, StartDate: day(2026, 6, 1), EndDate: day(2026, 6, 3)},
		}

		b := leave.CalculateBalance(22, leaves, 2026)

		assert.Equal(t, 3, b.Taken)
		assert.Equal(t, 19, b.Balance)
	})

	t.Run("no requests leaves the full allotment", func(t *testing.T) {
		b := leave.CalculateBalance(22, nil, 2026)

		assert.Equal(t, 22, b.Annual)
		assert.Equal(t, 0, b.Taken)
		assert.Equal(t, 22, b.Balance)
	})
}

func TestCountBusinessDays(t *testing.T) {
	// 2026-03-02 is a Monday.
	t.Run("full week counts five", func(t *testing.T) {
		assert.Equal(t, 5, leave.CountBusinessDays(day(2026, 3, 2), day(2026, 3, 8)))
	})

	t.Run("single weekday counts one", func(t *testing.T) {
		assert.Equal(t, 1, leave.CountBusinessDays(day(2026, 3, 4), day(2026, 3, 4)))
	})

	t.Run("weekend only counts zero", func(t *testing.T) {
		assert.Equal(t, 0, leave.CountBusinessDays(day(2026, 3, 7), day(2026, 3, 8)))
	})

	t.Run("two weeks count ten", func(t *testing.T) {
		assert.Equal(t, 10, leave.CountBusinessDays(day(2026, 3, 2), day(2026, 3, 13)))
	})
}
