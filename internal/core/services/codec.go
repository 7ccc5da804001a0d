package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

// Разделитель идентификаторов слотов во внешнем идентификаторе занятия.
// Сами идентификаторы - целые числа, разделитель в них встретиться не может
const occasionIDSeparator = "-"

// EncodeOccasionID кодирует упорядоченный ряд слотов в непрозрачный
// внешний идентификатор вида "12-13-14"
func EncodeOccasionID(slots []domain.Slot) string {
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, strconv.FormatInt(slot.ID, 10))
	}
	return strings.Join(ids, occasionIDSeparator)
}

// DecodeOccasionID разворачивает внешний идентификатор обратно в слоты.
// Каждый идентификатор заново резолвится в хранилище: если хотя бы один
// слот исчез, весь идентификатор невалиден - частичного совпадения нет
func (s *BookingService) DecodeOccasionID(ctx context.Context, encoded string) ([]domain.Slot, error) {
	if encoded == "" {
		return nil, domain.ErrInvalidOccasion
	}

	parts := strings.Split(encoded, occasionIDSeparator)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidOccasion
		}
		ids = append(ids, id)
	}

	slots, err := s.slotStore.GetSlotsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(slots) != len(ids) {
		return nil, domain.ErrInvalidOccasion
	}

	return slots, nil
}
