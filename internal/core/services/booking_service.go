package services

import (
	"context"
	"time"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

type BookingService struct {
	slotStore out.SlotStorePort
	apptStore out.AppointmentStorePort
	partners  out.PartnerStorePort
	cachePort out.CachePort
	ediPort   out.EdiPort
	logger    out.LoggerPort
	cfg       *config.Config
}

func NewBookingService(
	slotStore out.SlotStorePort,
	apptStore out.AppointmentStorePort,
	partners out.PartnerStorePort,
	cachePort out.CachePort,
	ediPort out.EdiPort,
	cfg *config.Config,
	logger out.LoggerPort,
) *BookingService {
	return &BookingService{
		slotStore: slotStore,
		apptStore: apptStore,
		partners:  partners,
		cachePort: cachePort,
		ediPort:   ediPort,
		cfg:       cfg,
		logger:    logger.WithModule("BookingService"),
	}
}

// reservedBefore - граница протухания резерваций: все, что зарезервировано
// раньше нее, уже не блокирует свои слоты
func (s *BookingService) reservedBefore(now time.Time) time.Time {
	return now.Add(-s.cfg.ReservationTimeout())
}

// getFreeSlots достает свободные слоты, по возможности из кэша
func (s *BookingService) getFreeSlots(ctx context.Context, typeID int64, channel string, start, stop time.Time) ([]domain.Slot, error) {
	// Проверяем кэш только если он включен
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		if slots, exists := s.cachePort.GetFreeSlots(ctx, typeID, channel, start, stop); exists {
			s.logger.Debug("occasions.slots.cache.hit", out.LogFields{
				"typeId":     typeID,
				"slotsCount": len(slots),
			})
			return slots, nil
		}
	}

	slots, err := s.slotStore.GetFreeSlots(ctx, typeID, channel, start, stop, s.reservedBefore(time.Now()))
	if err != nil {
		return nil, err
	}

	if s.cachePort != nil && s.cfg.Cache.Enabled {
		s.cachePort.StoreFreeSlots(ctx, typeID, channel, start, stop, slots)
	}

	return slots, nil
}

// invalidateSlots сбрасывает кэш свободных слотов после изменения занятости
func (s *BookingService) invalidateSlots(ctx context.Context, typeID int64) {
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		s.cachePort.InvalidateFreeSlots(ctx, typeID)
	}
}

// publishEdiEvent отправляет событие во внешнюю кейс-систему, если канал настроен.
// Ошибка публикации не роняет операцию, бронирование уже закоммичено
func (s *BookingService) publishEdiEvent(ctx context.Context, event out.EdiEvent, appt domain.Appointment, partner *domain.Partner) {
	if s.ediPort == nil {
		return
	}

	if err := s.ediPort.PublishAppointmentEvent(ctx, event, appt, partner); err != nil {
		s.logger.Error("edi.publish.failed", out.LogFields{
			"event":         string(event),
			"appointmentId": appt.ID,
			"error":         err.Error(),
		})
	}
}
