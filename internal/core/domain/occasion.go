package domain

import (
	"time"
)

// Occasion - непрерывный ряд свободных слотов, покрывающий запрошенную
// длительность. Не хранится, пересчитывается на каждый запрос;
// наружу уходит только закодированный список идентификаторов слотов
type Occasion struct {
	Slots     []Slot `json:"slots"`
	EncodedID string `json:"encodedId"`
	Title     string `json:"title"`
}

func (o Occasion) Start() time.Time {
	return o.Slots[0].Start
}

func (o Occasion) Stop() time.Time {
	return o.Slots[len(o.Slots)-1].Stop
}

func (o Occasion) Channel() string {
	return o.Slots[0].Channel
}

func (o Occasion) Duration(base time.Duration) time.Duration {
	return time.Duration(len(o.Slots)) * base
}

// Overlaps проверяет, делят ли два ряда хотя бы один слот
func (o Occasion) Overlaps(other Occasion) bool {
	for _, s := range o.Slots {
		for _, t := range other.Slots {
			if s.ID == t.ID {
				return true
			}
		}
	}
	return false
}

// DayOccasions - сгруппированные по дню ряды.
// Depths - до maxDepth альтернативных непересекающихся наборов
type DayOccasions struct {
	Day    time.Time   `json:"day"`
	Depths [][]Occasion `json:"depths"`
}
