package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// Схема хранилища. Таймстемпы хранятся строками RFC3339 в UTC,
// поэтому сравнения строк в SQL совпадают с хронологическими
const schema = `
CREATE TABLE IF NOT EXISTS meeting_types (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	ipf_num INTEGER NOT NULL UNIQUE,
	name    TEXT    NOT NULL,
	channel TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS partners (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	customer_nr  TEXT NOT NULL DEFAULT '',
	pnr          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS appointments (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT    NOT NULL,
	start_time       TEXT    NOT NULL,
	stop_time        TEXT    NOT NULL,
	duration_minutes INTEGER NOT NULL,
	partner_id       INTEGER NOT NULL DEFAULT 0,
	user_name        TEXT    NOT NULL DEFAULT '',
	type_id          INTEGER NOT NULL,
	channel          TEXT    NOT NULL,
	state            TEXT    NOT NULL,
	reserved_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS slots (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	start_time     TEXT    NOT NULL,
	stop_time      TEXT    NOT NULL,
	type_id        INTEGER NOT NULL REFERENCES meeting_types(id),
	channel        TEXT    NOT NULL,
	appointment_id INTEGER REFERENCES appointments(id)
);

CREATE INDEX IF NOT EXISTS idx_slots_type_start ON slots(type_id, start_time);
CREATE INDEX IF NOT EXISTS idx_slots_appointment ON slots(appointment_id);
CREATE INDEX IF NOT EXISTS idx_appointments_state ON appointments(state);
`

// Store держит соединение с SQLite и раздает транзакции репозиториям.
// _txlock=immediate - транзакции сразу берут write-lock, проверка занятости
// и захват слотов сериализуются базой
type Store struct {
	db     *sql.DB
	logger out.LoggerPort
}

func NewStore(path string, logger out.LoggerPort) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store.open.failed: %w", err)
	}

	// modernc-драйвер не любит конкурентные writer-соединения
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.migrate.failed: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.WithModule("SqliteStore"),
	}, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTransaction выполняет fn в одной транзакции.
// Ошибка fn откатывает все изменения целиком
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store.tx.begin_failed: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store.tx.rollback_failed (%v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store.tx.commit_failed: %w", err)
	}

	return nil
}
