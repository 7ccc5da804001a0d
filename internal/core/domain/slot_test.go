package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func slotAt(id int64, start time.Time, typeID int64, channel string) Slot {
	return Slot{
		ID:      id,
		Start:   start,
		Stop:    start.Add(30 * time.Minute),
		TypeID:  typeID,
		Channel: channel,
	}
}

func TestContiguous(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	assert.False(t, Contiguous(nil))

	assert.True(t, Contiguous([]Slot{slotAt(1, start, 1, "SPD")}))

	assert.True(t, Contiguous([]Slot{
		slotAt(1, start, 1, "SPD"),
		slotAt(2, start.Add(30*time.Minute), 1, "SPD"),
	}))

	// Дыра между слотами
	assert.False(t, Contiguous([]Slot{
		slotAt(1, start, 1, "SPD"),
		slotAt(2, start.Add(time.Hour), 1, "SPD"),
	}))

	// Разные каналы
	assert.False(t, Contiguous([]Slot{
		slotAt(1, start, 1, "SPD"),
		slotAt(2, start.Add(30*time.Minute), 1, "TFN"),
	}))

	// Разные типы встреч
	assert.False(t, Contiguous([]Slot{
		slotAt(1, start, 1, "SPD"),
		slotAt(2, start.Add(30*time.Minute), 2, "SPD"),
	}))
}

func TestOccasionOverlaps(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	a := slotAt(1, start, 1, "SPD")
	b := slotAt(2, start.Add(30*time.Minute), 1, "SPD")
	c := slotAt(3, start.Add(time.Hour), 1, "SPD")

	first := Occasion{Slots: []Slot{a, b}}
	second := Occasion{Slots: []Slot{b, c}}
	third := Occasion{Slots: []Slot{c}}

	assert.True(t, first.Overlaps(second))
	assert.True(t, second.Overlaps(first))
	assert.False(t, first.Overlaps(third))
}
