package out

import (
	"context"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

type EdiEvent string

const (
	EdiEventAppointmentReserved  EdiEvent = "reserved"
	EdiEventAppointmentConfirmed EdiEvent = "confirmed"
	EdiEventAppointmentDeleted   EdiEvent = "deleted"
)

// EdiPort - исходящий канал сообщений для внешней кейс-системы
type EdiPort interface {
	PublishAppointmentEvent(ctx context.Context, event EdiEvent, appt domain.Appointment, partner *domain.Partner) error
}
