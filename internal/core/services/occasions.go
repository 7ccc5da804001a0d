package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
	"github.com/vertel/af-booking-service/internal/utils"
)

// FindOccasions превращает календарь атомарных слотов в предлагаемые занятия:
// непрерывные ряды свободных слотов, покрывающие запрошенную длительность,
// сгруппированные по дню и до maxDepth непересекающихся альтернатив на день
func (s *BookingService) FindOccasions(ctx context.Context, start, stop time.Time, duration time.Duration, ipfNum int64, channel string, maxDepth int) ([]domain.DayOccasions, error) {
	s.logger.Info("occasions.find.started", out.LogFields{
		"ipfNum":   ipfNum,
		"start":    start,
		"stop":     stop,
		"duration": duration.String(),
		"maxDepth": maxDepth,
	})

	base := s.cfg.SlotDuration()
	if duration <= 0 || duration%base != 0 {
		return nil, domain.ErrInvalidDuration
	}
	if !start.Before(stop) {
		return nil, domain.ErrInvalidRequest
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	meetingType, err := s.slotStore.GetMeetingTypeByIpfNum(ctx, ipfNum)
	if err != nil {
		s.logger.Error("occasions.find.meeting_type.fetch_failed", out.LogFields{
			"ipfNum": ipfNum,
			"error":  err.Error(),
		})
		return nil, err
	}

	// Канал по умолчанию берется из типа встречи
	if channel == "" {
		channel = meetingType.Channel
	}

	slots, err := s.getFreeSlots(ctx, meetingType.ID, channel, start, stop)
	if err != nil {
		s.logger.Error("occasions.find.slots.fetch_failed", out.LogFields{
			"typeId": meetingType.ID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("occasions.find.slots.fetch_failed: %w", err)
	}

	// Пустое окно - пустой результат, не ошибка
	if len(slots) == 0 {
		return []domain.DayOccasions{}, nil
	}

	need := int(duration / base)
	result := make([]domain.DayOccasions, 0)

	for _, daySlots := range partitionByDay(slots) {
		candidates := make([]domain.Occasion, 0)

		// Внутри дня: максимальные непрерывные ряды, в каждом ряду -
		// все скользящие окна из need слотов. Пересекающиеся кандидаты
		// из одного ряда легальны, это альтернативные времена начала
		for _, run := range contiguousRuns(daySlots) {
			for i := 0; i+need <= len(run); i++ {
				window := run[i : i+need]
				candidates = append(candidates, s.newOccasion(window))
			}
		}

		if len(candidates) == 0 {
			continue
		}

		result = append(result, domain.DayOccasions{
			Day:    utils.StartCurrentDay(daySlots[0].Start.In(config.TimeZone)),
			Depths: partitionByDepth(candidates, maxDepth),
		})
	}

	s.logger.Debug("occasions.find.finished", out.LogFields{
		"daysCount": len(result),
	})

	return result, nil
}

func (s *BookingService) newOccasion(slots []domain.Slot) domain.Occasion {
	occ := domain.Occasion{
		Slots:     append([]domain.Slot(nil), slots...),
		EncodedID: EncodeOccasionID(slots),
	}
	minutes := len(slots) * s.cfg.Booking.SlotDurationMinutes
	occ.Title = fmt.Sprintf("%dm @ %s", minutes, occ.Start().In(config.TimeZone).Format("2006-01-02 15:04:05"))
	return occ
}

// partitionByDay делит отсортированные слоты по календарным дням референсной таймзоны
func partitionByDay(slots []domain.Slot) [][]domain.Slot {
	sorted := SlotSlice(slots).quickSort()

	days := make([][]domain.Slot, 0)
	var currentDay time.Time

	for _, slot := range sorted {
		day := utils.StartCurrentDay(slot.Start.In(config.TimeZone))
		if len(days) == 0 || !day.Equal(currentDay) {
			days = append(days, []domain.Slot{})
			currentDay = day
		}
		days[len(days)-1] = append(days[len(days)-1], slot)
	}

	return days
}

// contiguousRuns разбивает отсортированные слоты одного дня на максимальные
// непрерывные ряды: stop предыдущего совпадает со start следующего,
// канал и тип встречи общие
func contiguousRuns(daySlots []domain.Slot) [][]domain.Slot {
	runs := make([][]domain.Slot, 0)

	for _, slot := range daySlots {
		n := len(runs)
		if n > 0 {
			last := runs[n-1][len(runs[n-1])-1]
			if last.Stop.Equal(slot.Start) && last.Channel == slot.Channel && last.TypeID == slot.TypeID {
				runs[n-1] = append(runs[n-1], slot)
				continue
			}
		}
		runs = append(runs, []domain.Slot{slot})
	}

	return runs
}

// partitionByDepth раскладывает кандидатов по maxDepth альтернативным наборам.
// Кандидат идет в первый набор, где не делит ни одного слота с уже
// назначенными; если все наборы конфликтуют - отбрасывается.
// Кандидаты приходят в порядке времени начала, так что ранние
// времена выигрывают назначение
func partitionByDepth(candidates []domain.Occasion, maxDepth int) [][]domain.Occasion {
	depths := make([][]domain.Occasion, 0, maxDepth)

	for _, candidate := range candidates {
		placed := false

		for d := range depths {
			conflict := false
			for _, assigned := range depths[d] {
				if candidate.Overlaps(assigned) {
					conflict = true
					break
				}
			}
			if !conflict {
				depths[d] = append(depths[d], candidate)
				placed = true
				break
			}
		}

		if !placed && len(depths) < maxDepth {
			depths = append(depths, []domain.Occasion{candidate})
		}
	}

	return depths
}
