package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) Date {
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func TestCurrentHolderNone(t *testing.T) {
	empty := &Device{SerialNumber: "SN-000"}
	assert.Nil(t, empty.CurrentHolder())

	allClosed := &Device{
		SerialNumber: "SN-100",
		Assignments: []Assignment{
			{BadgeNumber: "B1", ReceivedDate: day(2024, 1, 1), HandoverDate: ClosedOn(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		},
	}
	assert.Nil(t, allClosed.CurrentHolder())
}

func TestCurrentHolderSingleOpen(t *testing.T) {
	device := &Device{
		SerialNumber: "SN-200",
		Assignments: []Assignment{
			{BadgeNumber: "B1", ReceivedDate: day(2023, 1, 1), HandoverDate: ClosedOn(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))},
			{BadgeNumber: "B2", ReceivedDate: day(2023, 7, 1)},
		},
	}

	holder := device.CurrentHolder()
	require.NotNil(t, holder)
	assert.Equal(t, "B2", holder.BadgeNumber)

	history := device.History()
	require.Len(t, history, 1)
	assert.Equal(t, "B1", history[0].BadgeNumber)
}

func TestCurrentHolderMultipleOpenPicksLatestReceived(t *testing.T) {
	// Two open assignments violate the invariant; the read path must not
	// crash and picks the most recent received date.
	device := &Device{
		Assignments: []Assignment{
			{BadgeNumber: "B1", ReceivedDate: day(2024, 3, 1)},
			{BadgeNumber: "B2", ReceivedDate: day(2024, 1, 1)},
		},
	}

	holder := device.CurrentHolder()
	require.NotNil(t, holder)
	assert.Equal(t, "B1", holder.BadgeNumber)
}

func TestCurrentHolderTieBreaksByListOrder(t *testing.T) {
	// Equal received dates: last in list order wins.
	device := &Device{
		Assignments: []Assignment{
			{BadgeNumber: "B1", ReceivedDate: day(2024, 1, 1)},
			{BadgeNumber: "B2", ReceivedDate: day(2024, 1, 1)},
			{BadgeNumber: "B3", ReceivedDate: day(2024, 1, 1)},
		},
	}

	holder := device.CurrentHolder()
	require.NotNil(t, holder)
	assert.Equal(t, "B3", holder.BadgeNumber)
}

func TestHistorySortedByReceivedDate(t *testing.T) {
	closed := func(badge string, received Date) Assignment {
		return Assignment{
			BadgeNumber:  badge,
			ReceivedDate: received,
			HandoverDate: ClosedOn(received.Time.AddDate(0, 6, 0)),
		}
	}

	device := &Device{
		Assignments: []Assignment{
			closed("B3", day(2023, 1, 1)),
			closed("B1", day(2021, 1, 1)),
			{BadgeNumber: "B4", ReceivedDate: day(2024, 1, 1)}, // open, excluded
			closed("B2", day(2022, 1, 1)),
		},
	}

	history := device.History()
	require.Len(t, history, 3)
	assert.Equal(t, "B1", history[0].BadgeNumber)
	assert.Equal(t, "B2", history[1].BadgeNumber)
	assert.Equal(t, "B3", history[2].BadgeNumber)
}

func TestHistoryDoesNotMutateDevice(t *testing.T) {
	device := &Device{
		Assignments: []Assignment{
			{BadgeNumber: "B2", ReceivedDate: day(2023, 1, 1), HandoverDate: ClosedOn(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))},
			{BadgeNumber: "B1", ReceivedDate: day(2022, 1, 1), HandoverDate: ClosedOn(time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC))},
		},
	}

	_ = device.History()
	assert.Equal(t, "B2", device.Assignments[0].BadgeNumber, "History must sort a copy, not the embedded list")
}

func TestHasBadge(t *testing.T) {
	device := &Device{
		Assignments: []Assignment{
			{BadgeNumber: "B1", ReceivedDate: day(2023, 1, 1), HandoverDate: ClosedOn(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))},
			{BadgeNumber: "B2", ReceivedDate: day(2023, 7, 1)},
		},
	}

	assert.True(t, device.HasBadge("B1"), "closed assignments still count for dedupe")
	assert.True(t, device.HasBadge("B2"))
	assert.False(t, device.HasBadge("B9"))
}
