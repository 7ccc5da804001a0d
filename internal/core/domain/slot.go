package domain

import (
	"time"
)

// Slot - атомарная единица бронирования фиксированной длительности.
// Stop - Start всегда равен базовой длительности слота из конфигурации.
type Slot struct {
	ID            int64     `json:"id"`
	Start         time.Time `json:"start"`
	Stop          time.Time `json:"stop"`
	TypeID        int64     `json:"typeId"`
	Channel       string    `json:"channel"`
	AppointmentID *int64    `json:"appointmentId,omitempty"`
}

// Contiguous проверяет, что слоты образуют один непрерывный ряд
// с общим типом встречи и каналом
func Contiguous(slots []Slot) bool {
	if len(slots) == 0 {
		return false
	}

	for i := 1; i < len(slots); i++ {
		if !slots[i-1].Stop.Equal(slots[i].Start) {
			return false
		}
		if slots[i].TypeID != slots[0].TypeID || slots[i].Channel != slots[0].Channel {
			return false
		}
	}

	return true
}
