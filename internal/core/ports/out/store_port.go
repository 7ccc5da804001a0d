package out

import (
	"context"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

// SlotStorePort - доступ к слотам и справочнику типов встреч.
// reservedBefore - граница протухания: резервации старше нее не блокируют слот
type SlotStorePort interface {
	GetMeetingTypeByID(ctx context.Context, id int64) (*domain.MeetingType, error)
	GetMeetingTypeByIpfNum(ctx context.Context, ipfNum int64) (*domain.MeetingType, error)
	GetMeetingTypesByIpfNums(ctx context.Context, ipfNums []int64) ([]domain.MeetingType, error)

	// Свободные слоты типа и канала, пересекающие окно [start, stop)
	GetFreeSlots(ctx context.Context, typeID int64, channel string, start, stop, reservedBefore time.Time) ([]domain.Slot, error)

	// Слоты по идентификаторам, в запрошенном порядке.
	// Если хотя бы один не найден - domain.ErrInvalidOccasion
	GetSlotsByIDs(ctx context.Context, ids []int64) ([]domain.Slot, error)
}

// AppointmentStorePort - бронирования и атомарные переходы их состояний.
// Reserve и Book выполняются одной транзакцией: проверка занятости
// и запись - неделимая операция относительно конкурентных вызовов
type AppointmentStorePort interface {
	// Создает бронирование в состоянии reserved, захватывая все слоты.
	// Если хотя бы один слот занят - domain.ErrOccasionNotFree, без частичных изменений
	Reserve(ctx context.Context, slotIDs []int64, appt domain.Appointment, reservedBefore time.Time) (*domain.Appointment, error)

	// Создает подтвержденное бронирование. Если все слоты держит одна
	// непротухшая резервация - она подтверждается и переиспользуется
	Book(ctx context.Context, slotIDs []int64, appt domain.Appointment, reservedBefore time.Time) (*domain.Appointment, error)

	// reserved -> confirmed; повторное подтверждение - no-op
	Confirm(ctx context.Context, id int64) (*domain.Appointment, error)

	// Отпускает слоты и отменяет их зарезервированные бронирования. Идемпотентно
	ReleaseSlots(ctx context.Context, slotIDs []int64) error

	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Search(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	Update(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error)
}

// PartnerStorePort - справочник партнеров (клиенты и сотрудники)
type PartnerStorePort interface {
	GetPartnerByID(ctx context.Context, id int64) (*domain.Partner, error)
	GetPartnerByCustomerNr(ctx context.Context, customerNr string) (*domain.Partner, error)
	GetPartnerByPnr(ctx context.Context, pnr string) (*domain.Partner, error)
	GetPartnerByName(ctx context.Context, name string) (*domain.Partner, error)
	UpdatePartnerPnr(ctx context.Context, customerNr, pnr string) error
}
