package in

import (
	"context"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

type BookingUseCase interface {
	// Агрегация свободных слотов в предлагаемые занятия,
	// сгруппированные по дню и до maxDepth альтернатив на день
	FindOccasions(ctx context.Context, start, stop time.Time, duration time.Duration, ipfNum int64, channel string, maxDepth int) ([]domain.DayOccasions, error)

	// Резервация занятия по внешнему идентификатору
	ReserveOccasion(ctx context.Context, encodedID string) (*domain.Appointment, error)

	// Снятие резервации. Идемпотентно
	ReleaseOccasion(ctx context.Context, encodedID string) error

	// Подтверждение резервации. Повторное подтверждение - no-op
	ConfirmAppointment(ctx context.Context, id int64) (*domain.Appointment, error)

	// Поиск бронирований по явным фильтрам
	SearchAppointments(ctx context.Context, filter AppointmentSearchFilter) ([]domain.AppointmentDetails, error)

	// Подтвержденное бронирование занятия за клиента
	BookAppointment(ctx context.Context, encodedID, customerNr, pnr string) (*domain.AppointmentDetails, error)

	DeleteAppointment(ctx context.Context, id int64) error
	UpdateAppointment(ctx context.Context, id int64, upd domain.AppointmentUpdate) (*domain.AppointmentDetails, error)

	// Смена национального идентификатора соискателя (сообщение RASK)
	HandleJobseekerIDChange(ctx context.Context, customerNr, pnr string) error
}

// AppointmentSearchFilter - фильтры поиска на границе запроса,
// до резолва партнеров и типов встреч
type AppointmentSearchFilter struct {
	UserName   string
	CustomerNr string
	Pnr        string
	TypeIpfs   []int64
	States     []string
	StartFrom  *time.Time
	StopUntil  *time.Time
}

// Empty возвращает true, если не задан ни один фильтр
func (f AppointmentSearchFilter) Empty() bool {
	return f.UserName == "" &&
		f.CustomerNr == "" &&
		f.Pnr == "" &&
		len(f.TypeIpfs) == 0 &&
		len(f.States) == 0 &&
		f.StartFrom == nil &&
		f.StopUntil == nil
}
