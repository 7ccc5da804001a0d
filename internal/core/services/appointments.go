package services

import (
	"context"
	"errors"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/in"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// SearchAppointments ищет бронирования по явным фильтрам.
// Несуществующий партнер или тип встречи - ошибка, а не пустой результат:
// интеграции различают "ничего не найдено" и "такого клиента нет"
func (s *BookingService) SearchAppointments(ctx context.Context, filter in.AppointmentSearchFilter) ([]domain.AppointmentDetails, error) {
	if filter.Empty() {
		return nil, domain.ErrInvalidRequest
	}

	storeFilter := domain.AppointmentFilter{
		UserName:  filter.UserName,
		StartFrom: filter.StartFrom,
		StopUntil: filter.StopUntil,
	}

	partner, err := s.resolvePartner(ctx, filter.CustomerNr, filter.Pnr)
	if err != nil {
		return nil, err
	}
	if partner != nil {
		storeFilter.PartnerID = partner.ID
	}

	if len(filter.TypeIpfs) > 0 {
		types, err := s.slotStore.GetMeetingTypesByIpfNums(ctx, filter.TypeIpfs)
		if err != nil {
			return nil, err
		}
		// Каждый запрошенный номер обязан разрезолвиться
		if len(types) != len(filter.TypeIpfs) {
			return nil, domain.ErrMeetingTypeNotFound
		}
		for _, mt := range types {
			storeFilter.TypeIDs = append(storeFilter.TypeIDs, mt.ID)
		}
	}

	for _, state := range filter.States {
		storeFilter.States = append(storeFilter.States, domain.AppointmentState(state))
	}

	appts, err := s.apptStore.Search(ctx, storeFilter)
	if err != nil {
		return nil, err
	}

	details := make([]domain.AppointmentDetails, 0, len(appts))
	for _, appt := range appts {
		detail, err := s.appointmentDetails(ctx, appt)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	return details, nil
}

// BookAppointment создает подтвержденное бронирование занятия за клиента.
// Если слоты держит одна непротухшая резервация, она подтверждается
// и переиспользуется; свободные слоты бронируются напрямую
func (s *BookingService) BookAppointment(ctx context.Context, encodedID, customerNr, pnr string) (*domain.AppointmentDetails, error) {
	if customerNr == "" && pnr == "" {
		return nil, domain.ErrInvalidRequest
	}
	if encodedID == "" {
		return nil, domain.ErrInvalidRequest
	}

	partner, err := s.resolvePartner(ctx, customerNr, pnr)
	if err != nil {
		return nil, err
	}

	slots, err := s.DecodeOccasionID(ctx, encodedID)
	if err != nil {
		return nil, err
	}
	if !domain.Contiguous(slots) {
		return nil, domain.ErrInvalidOccasion
	}

	meetingType, err := s.slotStore.GetMeetingTypeByID(ctx, slots[0].TypeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	appt := s.draftAppointment(slots, now)
	appt.State = domain.AppointmentStateConfirmed
	appt.Name = meetingType.Name
	appt.PartnerID = partner.ID

	booked, err := s.apptStore.Book(ctx, slotIDs(slots), appt, s.reservedBefore(now))
	if err != nil {
		s.logger.Warn("appointment.book.rejected", out.LogFields{
			"occasionId": encodedID,
			"partnerId":  partner.ID,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.invalidateSlots(ctx, booked.TypeID)
	s.publishEdiEvent(ctx, out.EdiEventAppointmentConfirmed, *booked, partner)

	s.logger.Info("appointment.book.created", out.LogFields{
		"occasionId":    encodedID,
		"appointmentId": booked.ID,
	})

	return &domain.AppointmentDetails{
		Appointment: *booked,
		Partner:     partner,
		Employee:    s.employeeByName(ctx, booked.UserName),
		MeetingType: meetingType,
	}, nil
}

// DeleteAppointment удаляет бронирование и отпускает его слоты
func (s *BookingService) DeleteAppointment(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidRequest
	}

	appt, err := s.apptStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.apptStore.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSlots(ctx, appt.TypeID)
	s.publishEdiEvent(ctx, out.EdiEventAppointmentDeleted, *appt, nil)

	s.logger.Info("appointment.delete.done", out.LogFields{
		"appointmentId": id,
	})

	return nil
}

// UpdateAppointment применяет закрытый набор обновляемых полей.
// Каждое поле валидируется по справочникам до слияния
func (s *BookingService) UpdateAppointment(ctx context.Context, id int64, upd domain.AppointmentUpdate) (*domain.AppointmentDetails, error) {
	if upd.Empty() {
		return nil, domain.ErrInvalidRequest
	}

	patch := domain.AppointmentPatch{
		Title:    upd.Title,
		UserName: upd.UserName,
	}

	if upd.CustomerNr != nil {
		partner, err := s.partners.GetPartnerByCustomerNr(ctx, *upd.CustomerNr)
		if err != nil {
			return nil, err
		}
		patch.PartnerID = &partner.ID
	}

	if upd.TypeIpfNum != nil {
		meetingType, err := s.slotStore.GetMeetingTypeByIpfNum(ctx, *upd.TypeIpfNum)
		if err != nil {
			return nil, err
		}
		patch.TypeID = &meetingType.ID
		patch.Channel = &meetingType.Channel
	}

	updated, err := s.apptStore.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	return s.appointmentDetails(ctx, *updated)
}

// HandleJobseekerIDChange обновляет национальный идентификатор соискателя
// по сообщению RASK. Неизвестный клиент не ошибка, сообщение просто пропускается
func (s *BookingService) HandleJobseekerIDChange(ctx context.Context, customerNr, pnr string) error {
	err := s.partners.UpdatePartnerPnr(ctx, customerNr, pnr)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("jobseeker.id_change.unknown_customer", out.LogFields{
			"customerNr": customerNr,
		})
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("jobseeker.id_change.applied", out.LogFields{
		"customerNr": customerNr,
	})

	return nil
}

// resolvePartner ищет партнера сначала по pnr, потом по номеру клиента.
// Оба пустые - партнер не нужен, возвращается nil
func (s *BookingService) resolvePartner(ctx context.Context, customerNr, pnr string) (*domain.Partner, error) {
	if pnr != "" {
		return s.partners.GetPartnerByPnr(ctx, pnr)
	}
	if customerNr != "" {
		return s.partners.GetPartnerByCustomerNr(ctx, customerNr)
	}
	return nil, nil
}

// employeeByName достает карточку сотрудника для ответа, miss не ошибка
func (s *BookingService) employeeByName(ctx context.Context, name string) *domain.Partner {
	employee, err := s.partners.GetPartnerByName(ctx, name)
	if err != nil {
		return nil
	}
	return employee
}

func (s *BookingService) appointmentDetails(ctx context.Context, appt domain.Appointment) (*domain.AppointmentDetails, error) {
	detail := domain.AppointmentDetails{Appointment: appt}

	if appt.PartnerID != 0 {
		partner, err := s.partners.GetPartnerByID(ctx, appt.PartnerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		detail.Partner = partner
	}

	detail.Employee = s.employeeByName(ctx, appt.UserName)

	meetingType, err := s.slotStore.GetMeetingTypeByID(ctx, appt.TypeID)
	if err != nil && !errors.Is(err, domain.ErrMeetingTypeNotFound) {
		return nil, err
	}
	detail.MeetingType = meetingType

	return &detail, nil
}
