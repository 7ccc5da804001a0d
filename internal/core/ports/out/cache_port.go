package out

import (
	"context"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

type CachePort interface {
	// Кэширование свободных слотов по типу встречи
	GetFreeSlots(ctx context.Context, typeID int64, channel string, start, stop time.Time) ([]domain.Slot, bool)
	StoreFreeSlots(ctx context.Context, typeID int64, channel string, start, stop time.Time, slots []domain.Slot)
	InvalidateFreeSlots(ctx context.Context, typeID int64)
	InvalidateAllFreeSlots(ctx context.Context)
}
