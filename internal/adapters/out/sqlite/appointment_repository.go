package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// AppointmentRepository - бронирования и атомарные переходы занятости слотов.
// Проверка занятости и запись выполняются одной транзакцией:
// два конкурентных захвата пересекающихся слотов не пройдут оба
type AppointmentRepository struct {
	store  *Store
	logger out.LoggerPort
}

func NewAppointmentRepository(store *Store) *AppointmentRepository {
	return &AppointmentRepository{
		store:  store,
		logger: store.logger.WithModule("AppointmentRepository"),
	}
}

// slotOwner - занятость одного слота на момент проверки
type slotOwner struct {
	slotID     int64
	apptID     sql.NullInt64
	state      sql.NullString
	reservedAt sql.NullString
}

// Reserve атомарно создает резервацию на все слоты.
// Протухшие резервации, встреченные по пути, отменяются в той же транзакции
func (r *AppointmentRepository) Reserve(ctx context.Context, slotIDs []int64, appt domain.Appointment, reservedBefore time.Time) (*domain.Appointment, error) {
	appt.State = domain.AppointmentStateReserved

	var created *domain.Appointment
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		owners, err := r.lockOwners(ctx, tx, slotIDs)
		if err != nil {
			return err
		}

		expired, err := r.checkEligibility(owners, reservedBefore)
		if err != nil {
			return err
		}

		if err := r.reclaimExpired(ctx, tx, expired); err != nil {
			return err
		}

		created, err = r.insertAppointment(ctx, tx, appt)
		if err != nil {
			return err
		}

		return r.claimSlots(ctx, tx, slotIDs, created.ID)
	})
	if err != nil {
		return nil, err
	}

	created.SlotIDs = slotIDs
	return created, nil
}

// Book атомарно создает подтвержденное бронирование. Если все слоты
// держит одна непротухшая резервация, она подтверждается и переиспользуется
// вместо создания нового бронирования
func (r *AppointmentRepository) Book(ctx context.Context, slotIDs []int64, appt domain.Appointment, reservedBefore time.Time) (*domain.Appointment, error) {
	appt.State = domain.AppointmentStateConfirmed

	var booked *domain.Appointment
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		owners, err := r.lockOwners(ctx, tx, slotIDs)
		if err != nil {
			return err
		}

		// Все слоты под одной живой резервацией - подтверждаем ее
		if holder, ok := singleActiveReservation(owners, reservedBefore); ok {
			booked, err = r.adoptReservation(ctx, tx, holder, appt)
			return err
		}

		expired, err := r.checkEligibility(owners, reservedBefore)
		if err != nil {
			return err
		}

		if err := r.reclaimExpired(ctx, tx, expired); err != nil {
			return err
		}

		booked, err = r.insertAppointment(ctx, tx, appt)
		if err != nil {
			return err
		}

		return r.claimSlots(ctx, tx, slotIDs, booked.ID)
	})
	if err != nil {
		return nil, err
	}

	booked.SlotIDs = slotIDs
	return booked, nil
}

// Confirm переводит резервацию в confirmed.
// Повторное подтверждение уже подтвержденного бронирования - no-op
func (r *AppointmentRepository) Confirm(ctx context.Context, id int64) (*domain.Appointment, error) {
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		var state string
		err := tx.QueryRowContext(ctx,
			`SELECT state FROM appointments WHERE id = ?`, id).Scan(&state)
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		switch domain.AppointmentState(state) {
		case domain.AppointmentStateConfirmed:
			return nil
		case domain.AppointmentStateReserved:
			_, err := tx.ExecContext(ctx,
				`UPDATE appointments SET state = ? WHERE id = ?`,
				string(domain.AppointmentStateConfirmed), id)
			return err
		default:
			return domain.ErrNotFound
		}
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// ReleaseSlots отпускает слоты и отменяет их зарезервированные бронирования.
// Идемпотентно: слоты без живой резервации просто пропускаются
func (r *AppointmentRepository) ReleaseSlots(ctx context.Context, slotIDs []int64) error {
	if len(slotIDs) == 0 {
		return nil
	}

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`
			SELECT DISTINCT a.id
			FROM appointments a
			JOIN slots s ON s.appointment_id = a.id
			WHERE a.state = ? AND s.id IN (%s)`, placeholders(len(slotIDs)))

		args := append([]interface{}{string(domain.AppointmentStateReserved)}, int64Args(slotIDs)...)
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var holders []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			holders = append(holders, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return r.reclaimExpired(ctx, tx, holders)
	})
}

// Delete удаляет бронирование и отпускает все его слоты
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE slots SET appointment_id = NULL WHERE appointment_id = ?`, id); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		return nil
	})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, stop_time, duration_minutes, partner_id,
		       user_name, type_id, channel, state, reserved_at
		FROM appointments WHERE id = ?`, id)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	appt.SlotIDs, err = r.appointmentSlotIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return appt, nil
}

// Search собирает WHERE из явного набора фильтров
func (r *AppointmentRepository) Search(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := `
		SELECT id, name, start_time, stop_time, duration_minutes, partner_id,
		       user_name, type_id, channel, state, reserved_at
		FROM appointments WHERE 1=1`
	var args []interface{}

	if filter.UserName != "" {
		query += ` AND user_name = ?`
		args = append(args, filter.UserName)
	}
	if filter.PartnerID != 0 {
		query += ` AND partner_id = ?`
		args = append(args, filter.PartnerID)
	}
	if len(filter.TypeIDs) > 0 {
		query += fmt.Sprintf(` AND type_id IN (%s)`, placeholders(len(filter.TypeIDs)))
		args = append(args, int64Args(filter.TypeIDs)...)
	}
	if len(filter.States) > 0 {
		query += fmt.Sprintf(` AND state IN (%s)`, placeholders(len(filter.States)))
		for _, state := range filter.States {
			args = append(args, string(state))
		}
	}
	if filter.StartFrom != nil {
		query += ` AND start_time >= ?`
		args = append(args, formatTime(*filter.StartFrom))
	}
	if filter.StopUntil != nil {
		query += ` AND stop_time <= ?`
		args = append(args, formatTime(*filter.StopUntil))
	}

	query += ` ORDER BY start_time`

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointmentRows(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range appts {
		appts[i].SlotIDs, err = r.appointmentSlotIDs(ctx, appts[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return appts, nil
}

// Update применяет уже разрезолвленный патч полей
func (r *AppointmentRepository) Update(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	query := `UPDATE appointments SET id = id`
	var args []interface{}

	if patch.Title != nil {
		query += `, name = ?`
		args = append(args, *patch.Title)
	}
	if patch.UserName != nil {
		query += `, user_name = ?`
		args = append(args, *patch.UserName)
	}
	if patch.PartnerID != nil {
		query += `, partner_id = ?`
		args = append(args, *patch.PartnerID)
	}
	if patch.TypeID != nil {
		query += `, type_id = ?`
		args = append(args, *patch.TypeID)
	}
	if patch.Channel != nil {
		query += `, channel = ?`
		args = append(args, *patch.Channel)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// lockOwners читает занятость всех слотов внутри транзакции.
// Нехватающий слот - невалидное занятие
func (r *AppointmentRepository) lockOwners(ctx context.Context, tx *sql.Tx, slotIDs []int64) ([]slotOwner, error) {
	query := fmt.Sprintf(`
		SELECT s.id, s.appointment_id, a.state, a.reserved_at
		FROM slots s
		LEFT JOIN appointments a ON a.id = s.appointment_id
		WHERE s.id IN (%s)`, placeholders(len(slotIDs)))

	rows, err := tx.QueryContext(ctx, query, int64Args(slotIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []slotOwner
	for rows.Next() {
		var owner slotOwner
		if err := rows.Scan(&owner.slotID, &owner.apptID, &owner.state, &owner.reservedAt); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(owners) != len(slotIDs) {
		return nil, domain.ErrInvalidOccasion
	}

	return owners, nil
}

// checkEligibility проверяет, что каждый слот можно занять, и возвращает
// идентификаторы протухших резерваций, которые нужно снять по пути.
// Любой занятый слот отклоняет весь набор
func (r *AppointmentRepository) checkEligibility(owners []slotOwner, reservedBefore time.Time) ([]int64, error) {
	expiredSet := make(map[int64]struct{})

	for _, owner := range owners {
		if !owner.apptID.Valid {
			continue
		}

		switch domain.AppointmentState(owner.state.String) {
		case domain.AppointmentStateCancelled:
			continue
		case domain.AppointmentStateReserved:
			reservedAt, err := parseTime(owner.reservedAt.String)
			if err != nil {
				return nil, err
			}
			if reservedAt.Before(reservedBefore) {
				// Протухшая резервация освобождается лениво, прямо здесь
				expiredSet[owner.apptID.Int64] = struct{}{}
				continue
			}
			return nil, domain.ErrOccasionNotFree
		default:
			return nil, domain.ErrOccasionNotFree
		}
	}

	expired := make([]int64, 0, len(expiredSet))
	for id := range expiredSet {
		expired = append(expired, id)
	}

	return expired, nil
}

// reclaimExpired отменяет бронирования и отпускает все их слоты
func (r *AppointmentRepository) reclaimExpired(ctx context.Context, tx *sql.Tx, apptIDs []int64) error {
	if len(apptIDs) == 0 {
		return nil
	}

	args := int64Args(apptIDs)

	query := fmt.Sprintf(`UPDATE appointments SET state = ? WHERE id IN (%s)`, placeholders(len(apptIDs)))
	if _, err := tx.ExecContext(ctx, query, append([]interface{}{string(domain.AppointmentStateCancelled)}, args...)...); err != nil {
		return err
	}

	query = fmt.Sprintf(`UPDATE slots SET appointment_id = NULL WHERE appointment_id IN (%s)`, placeholders(len(apptIDs)))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (r *AppointmentRepository) insertAppointment(ctx context.Context, tx *sql.Tx, appt domain.Appointment) (*domain.Appointment, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO appointments
			(name, start_time, stop_time, duration_minutes, partner_id, user_name,
			 type_id, channel, state, reserved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.Name,
		formatTime(appt.Start),
		formatTime(appt.Stop),
		appt.DurationMinutes,
		appt.PartnerID,
		appt.UserName,
		appt.TypeID,
		appt.Channel,
		string(appt.State),
		formatTime(appt.ReservedAt),
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	appt.ID = id
	return &appt, nil
}

func (r *AppointmentRepository) claimSlots(ctx context.Context, tx *sql.Tx, slotIDs []int64, apptID int64) error {
	query := fmt.Sprintf(`UPDATE slots SET appointment_id = ? WHERE id IN (%s)`, placeholders(len(slotIDs)))
	_, err := tx.ExecContext(ctx, query, append([]interface{}{apptID}, int64Args(slotIDs)...)...)
	return err
}

// adoptReservation подтверждает существующую резервацию и переписывает
// на нее данные клиента
func (r *AppointmentRepository) adoptReservation(ctx context.Context, tx *sql.Tx, holderID int64, appt domain.Appointment) (*domain.Appointment, error) {
	_, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET state = ?, name = ?, partner_id = ?, user_name = ?
		WHERE id = ?`,
		string(domain.AppointmentStateConfirmed),
		appt.Name,
		appt.PartnerID,
		appt.UserName,
		holderID,
	)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, name, start_time, stop_time, duration_minutes, partner_id,
		       user_name, type_id, channel, state, reserved_at
		FROM appointments WHERE id = ?`, holderID)

	return scanAppointment(row)
}

// singleActiveReservation возвращает холдера, если каждый слот занят одной
// и той же живой резервацией
func singleActiveReservation(owners []slotOwner, reservedBefore time.Time) (int64, bool) {
	var holder int64

	for _, owner := range owners {
		if !owner.apptID.Valid {
			return 0, false
		}
		if domain.AppointmentState(owner.state.String) != domain.AppointmentStateReserved {
			return 0, false
		}

		reservedAt, err := parseTime(owner.reservedAt.String)
		if err != nil || reservedAt.Before(reservedBefore) {
			return 0, false
		}

		if holder == 0 {
			holder = owner.apptID.Int64
		} else if holder != owner.apptID.Int64 {
			return 0, false
		}
	}

	return holder, holder != 0
}

func (r *AppointmentRepository) appointmentSlotIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id FROM slots WHERE appointment_id = ? ORDER BY start_time`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var slotID int64
		if err := rows.Scan(&slotID); err != nil {
			return nil, err
		}
		ids = append(ids, slotID)
	}

	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointmentFrom(scanner rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var start, stop, reservedAt, state string

	err := scanner.Scan(
		&appt.ID, &appt.Name, &start, &stop, &appt.DurationMinutes,
		&appt.PartnerID, &appt.UserName, &appt.TypeID, &appt.Channel,
		&state, &reservedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	appt.State = domain.AppointmentState(state)
	if appt.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if appt.Stop, err = parseTime(stop); err != nil {
		return nil, err
	}
	if appt.ReservedAt, err = parseTime(reservedAt); err != nil {
		return nil, err
	}

	return &appt, nil
}

func scanAppointment(row *sql.Row) (*domain.Appointment, error) {
	return scanAppointmentFrom(row)
}

func scanAppointmentRows(rows *sql.Rows) (*domain.Appointment, error) {
	return scanAppointmentFrom(rows)
}
