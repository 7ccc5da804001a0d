package sqlite

import (
	"context"
	"database/sql"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

// PartnerRepository - справочник партнеров (клиенты и сотрудники)
type PartnerRepository struct {
	store *Store
}

func NewPartnerRepository(store *Store) *PartnerRepository {
	return &PartnerRepository{store: store}
}

const partnerColumns = `id, name, display_name, phone, customer_nr, pnr`

func (r *PartnerRepository) GetPartnerByID(ctx context.Context, id int64) (*domain.Partner, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = ?`, id)
	return scanPartner(row)
}

func (r *PartnerRepository) GetPartnerByCustomerNr(ctx context.Context, customerNr string) (*domain.Partner, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE customer_nr = ?`, customerNr)
	return scanPartner(row)
}

func (r *PartnerRepository) GetPartnerByPnr(ctx context.Context, pnr string) (*domain.Partner, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE pnr = ?`, pnr)
	return scanPartner(row)
}

func (r *PartnerRepository) GetPartnerByName(ctx context.Context, name string) (*domain.Partner, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE name = ?`, name)
	return scanPartner(row)
}

// UpdatePartnerPnr меняет национальный идентификатор по номеру клиента
func (r *PartnerRepository) UpdatePartnerPnr(ctx context.Context, customerNr, pnr string) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE partners SET pnr = ? WHERE customer_nr = ?`, pnr, customerNr)
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
}

func (s *Store) CreatePartner(ctx context.Context, p domain.Partner) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO partners (name, display_name, phone, customer_nr, pnr) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.DisplayName, p.Phone, p.CustomerNr, p.Pnr)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanPartner(row *sql.Row) (*domain.Partner, error) {
	var p domain.Partner
	err := row.Scan(&p.ID, &p.Name, &p.DisplayName, &p.Phone, &p.CustomerNr, &p.Pnr)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
