package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// CacheEntry - закэшированный результат выборки свободных слотов.
// Каждое изменение занятости инвалидирует записи своего типа встречи,
// а TTL страхует от лениво протухающих резерваций, которые освобождают
// слоты просто ходом времени
type CacheEntry struct {
	Slots     []domain.Slot
	Channel   string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

type LRUCacheAdapter struct {
	cache  *lru.Cache[int64, *CacheEntry]
	ttl    time.Duration
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewLRUCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*LRUCacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	cache, err := lru.New[int64, *CacheEntry](cfg.Cache.Size)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.Size,
		})
		return nil, err
	}

	return &LRUCacheAdapter{
		cache:  cache,
		ttl:    cfg.CacheTTL(),
		logger: logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *LRUCacheAdapter) GetFreeSlots(ctx context.Context, typeID int64, channel string, start, stop time.Time) ([]domain.Slot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache.Get(typeID)
	if !exists {
		c.logger.Debug("cache.get.miss", out.LogFields{
			"typeId": typeID,
		})
		return nil, false
	}

	if entry.Channel != channel {
		return nil, false
	}

	if time.Since(entry.CreatedAt) > c.ttl {
		c.logger.Debug("cache.get.expired", out.LogFields{
			"typeId": typeID,
		})
		return nil, false
	}

	if start.Before(entry.StartDate) || stop.After(entry.EndDate) {
		c.logger.Debug("cache.get.date_range_mismatch", out.LogFields{
			"typeId":         typeID,
			"requestedStart": start,
			"requestedEnd":   stop,
			"cachedStart":    entry.StartDate,
			"cachedEnd":      entry.EndDate,
		})
		return nil, false
	}

	// Отдаем только слоты, пересекающие запрошенное окно
	slots := make([]domain.Slot, 0, len(entry.Slots))
	for _, slot := range entry.Slots {
		if slot.Start.Before(stop) && slot.Stop.After(start) {
			slots = append(slots, slot)
		}
	}

	c.logger.Debug("cache.get.hit", out.LogFields{
		"typeId":     typeID,
		"slotsCount": len(slots),
	})
	return slots, true
}

func (c *LRUCacheAdapter) StoreFreeSlots(ctx context.Context, typeID int64, channel string, start, stop time.Time, slots []domain.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.store", out.LogFields{
		"typeId":     typeID,
		"slotsCount": len(slots),
	})

	newEntry := &CacheEntry{
		Slots:     slots,
		Channel:   channel,
		StartDate: start,
		EndDate:   stop,
		CreatedAt: time.Now(),
	}

	c.cache.Add(typeID, newEntry)
}

func (c *LRUCacheAdapter) InvalidateFreeSlots(ctx context.Context, typeID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(typeID)
}

func (c *LRUCacheAdapter) InvalidateAllFreeSlots(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}
