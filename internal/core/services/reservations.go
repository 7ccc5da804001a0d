package services

import (
	"context"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// ReserveOccasion атомарно резервирует все слоты занятия.
// Если хотя бы один слот занят подтвержденным или непротухшим
// зарезервированным бронированием - отказ целиком, без частичного захвата
func (s *BookingService) ReserveOccasion(ctx context.Context, encodedID string) (*domain.Appointment, error) {
	slots, err := s.DecodeOccasionID(ctx, encodedID)
	if err != nil {
		return nil, err
	}

	if !domain.Contiguous(slots) {
		return nil, domain.ErrInvalidOccasion
	}

	now := time.Now().UTC()
	appt := s.draftAppointment(slots, now)
	appt.State = domain.AppointmentStateReserved

	ids := slotIDs(slots)
	reserved, err := s.apptStore.Reserve(ctx, ids, appt, s.reservedBefore(now))
	if err != nil {
		s.logger.Warn("reservation.reserve.rejected", out.LogFields{
			"occasionId": encodedID,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.invalidateSlots(ctx, reserved.TypeID)
	s.publishEdiEvent(ctx, out.EdiEventAppointmentReserved, *reserved, nil)

	s.logger.Info("reservation.reserve.created", out.LogFields{
		"occasionId":    encodedID,
		"appointmentId": reserved.ID,
	})

	return reserved, nil
}

// ReleaseOccasion отпускает слоты занятия и отменяет их резервации.
// Идемпотентно: повторное снятие уже свободного занятия - no-op
func (s *BookingService) ReleaseOccasion(ctx context.Context, encodedID string) error {
	slots, err := s.DecodeOccasionID(ctx, encodedID)
	if err != nil {
		return err
	}

	if err := s.apptStore.ReleaseSlots(ctx, slotIDs(slots)); err != nil {
		return err
	}

	s.invalidateSlots(ctx, slots[0].TypeID)

	s.logger.Info("reservation.release.done", out.LogFields{
		"occasionId": encodedID,
	})

	return nil
}

// ConfirmAppointment переводит резервацию в подтвержденное бронирование.
// Подтверждение уже подтвержденного - no-op, дубли подтверждений
// не должны портить состояние
func (s *BookingService) ConfirmAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	confirmed, err := s.apptStore.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEdiEvent(ctx, out.EdiEventAppointmentConfirmed, *confirmed, nil)

	return confirmed, nil
}

// draftAppointment собирает каркас бронирования из ряда слотов
func (s *BookingService) draftAppointment(slots []domain.Slot, now time.Time) domain.Appointment {
	occ := s.newOccasion(slots)

	return domain.Appointment{
		Name:            occ.Title,
		Start:           occ.Start(),
		Stop:            occ.Stop(),
		DurationMinutes: len(slots) * s.cfg.Booking.SlotDurationMinutes,
		UserName:        s.cfg.Booking.DefaultEmployee,
		TypeID:          slots[0].TypeID,
		Channel:         slots[0].Channel,
		ReservedAt:      now,
		SlotIDs:         slotIDs(slots),
	}
}

func slotIDs(slots []domain.Slot) []int64 {
	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	return ids
}
