package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

// SlotRepository - слоты и справочник типов встреч поверх Store
type SlotRepository struct {
	store *Store
}

func NewSlotRepository(store *Store) *SlotRepository {
	return &SlotRepository{store: store}
}

func (r *SlotRepository) GetMeetingTypeByID(ctx context.Context, id int64) (*domain.MeetingType, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, ipf_num, name, channel FROM meeting_types WHERE id = ?`, id)
	return scanMeetingType(row)
}

func (r *SlotRepository) GetMeetingTypeByIpfNum(ctx context.Context, ipfNum int64) (*domain.MeetingType, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, ipf_num, name, channel FROM meeting_types WHERE ipf_num = ?`, ipfNum)
	return scanMeetingType(row)
}

func (r *SlotRepository) GetMeetingTypesByIpfNums(ctx context.Context, ipfNums []int64) ([]domain.MeetingType, error) {
	if len(ipfNums) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT id, ipf_num, name, channel FROM meeting_types WHERE ipf_num IN (%s)`,
		placeholders(len(ipfNums)))

	rows, err := r.store.db.QueryContext(ctx, query, int64Args(ipfNums)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.MeetingType
	for rows.Next() {
		var mt domain.MeetingType
		if err := rows.Scan(&mt.ID, &mt.IpfNum, &mt.Name, &mt.Channel); err != nil {
			return nil, err
		}
		types = append(types, mt)
	}

	return types, rows.Err()
}

// GetFreeSlots возвращает свободные слоты типа и канала, пересекающие окно.
// Слот свободен, если он никем не занят, его бронирование отменено
// или резервация протухла (reserved_at раньше reservedBefore)
func (r *SlotRepository) GetFreeSlots(ctx context.Context, typeID int64, channel string, start, stop, reservedBefore time.Time) ([]domain.Slot, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT s.id, s.start_time, s.stop_time, s.type_id, s.channel, s.appointment_id
		FROM slots s
		LEFT JOIN appointments a ON a.id = s.appointment_id
		WHERE s.type_id = ?
		  AND s.channel = ?
		  AND s.start_time < ?
		  AND s.stop_time > ?
		  AND (s.appointment_id IS NULL
		       OR a.state = ?
		       OR (a.state = ? AND a.reserved_at < ?))
		ORDER BY s.start_time`,
		typeID,
		channel,
		formatTime(stop),
		formatTime(start),
		string(domain.AppointmentStateCancelled),
		string(domain.AppointmentStateReserved),
		formatTime(reservedBefore),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlots(rows)
}

// GetSlotsByIDs возвращает слоты в запрошенном порядке.
// Любой нехватающий идентификатор делает весь запрос невалидным
func (r *SlotRepository) GetSlotsByIDs(ctx context.Context, ids []int64) ([]domain.Slot, error) {
	if len(ids) == 0 {
		return nil, domain.ErrInvalidOccasion
	}

	query := fmt.Sprintf(`
		SELECT id, start_time, stop_time, type_id, channel, appointment_id
		FROM slots WHERE id IN (%s)`, placeholders(len(ids)))

	rows, err := r.store.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found, err := scanSlots(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Slot, len(found))
	for _, slot := range found {
		byID[slot.ID] = slot
	}

	// Восстанавливаем запрошенный порядок
	ordered := make([]domain.Slot, 0, len(ids))
	for _, id := range ids {
		slot, ok := byID[id]
		if !ok {
			return nil, domain.ErrInvalidOccasion
		}
		ordered = append(ordered, slot)
	}

	return ordered, nil
}

// CreateMeetingType и CreateSlots наполняют календарь; в проде этим
// занимается внешняя конфигурация расписаний, сервис их не вызывает

func (s *Store) CreateMeetingType(ctx context.Context, mt domain.MeetingType) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO meeting_types (ipf_num, name, channel) VALUES (?, ?, ?)`,
		mt.IpfNum, mt.Name, mt.Channel)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) CreateSlots(ctx context.Context, slots []domain.Slot) ([]int64, error) {
	ids := make([]int64, 0, len(slots))

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, slot := range slots {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO slots (start_time, stop_time, type_id, channel) VALUES (?, ?, ?, ?)`,
				formatTime(slot.Start), formatTime(slot.Stop), slot.TypeID, slot.Channel)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func scanMeetingType(row *sql.Row) (*domain.MeetingType, error) {
	var mt domain.MeetingType
	err := row.Scan(&mt.ID, &mt.IpfNum, &mt.Name, &mt.Channel)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMeetingTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

func scanSlots(rows *sql.Rows) ([]domain.Slot, error) {
	var slots []domain.Slot

	for rows.Next() {
		var slot domain.Slot
		var start, stop string
		var apptID sql.NullInt64

		if err := rows.Scan(&slot.ID, &start, &stop, &slot.TypeID, &slot.Channel, &apptID); err != nil {
			return nil, err
		}

		var err error
		if slot.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if slot.Stop, err = parseTime(stop); err != nil {
			return nil, err
		}
		if apptID.Valid {
			id := apptID.Int64
			slot.AppointmentID = &id
		}

		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
