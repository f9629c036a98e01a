package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adarshgogate/BloodDonorApp/database"
	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
)

type sqliteDonorRepo struct {
	db database.TxQuerier
}

// NewSQLiteDonorRepo returns the SQLite DonorRepository.
func NewSQLiteDonorRepo(db database.TxQuerier) DonorRepository {
	return &sqliteDonorRepo{db: db}
}

const donorColumns = `id, name, blood_group, city, contact, registered_at`

func (r *sqliteDonorRepo) Create(ctx context.Context, donor *models.Donor) error {
	if donor.ID == "" {
		donor.ID = uuid.New().String()
	}
	if donor.RegisteredAt.IsZero() {
		donor.RegisteredAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO donors (`+donorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		donor.ID, donor.Name, donor.BloodGroup, donor.City, donor.Contact, donor.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a donor with this contact is already registered", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create donor: %w", err)
	}
	return nil
}

func (r *sqliteDonorRepo) GetByID(ctx context.Context, id string) (*models.Donor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+donorColumns+` FROM donors WHERE id = ?`, id)

	d := &models.Donor{}
	err := row.Scan(&d.ID, &d.Name, &d.BloodGroup, &d.City, &d.Contact, &d.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return d, nil
}

// List relies on the NOCASE collation of name, city and blood_group for
// case-insensitive matching.
func (r *sqliteDonorRepo) List(ctx context.Context, filter models.SearchFilter) ([]models.Donor, error) {
	where, args := filterClause(
		filterTerm{"name", filter.Name},
		filterTerm{"city", filter.City},
		filterTerm{"blood_group", filter.BloodGroup},
	)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+donorColumns+` FROM donors`+where+` ORDER BY registered_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	defer rows.Close()

	donors := []models.Donor{}
	for rows.Next() {
		var d models.Donor
		if err := rows.Scan(&d.ID, &d.Name, &d.BloodGroup, &d.City, &d.Contact, &d.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan donor row: %w", err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donor rows: %w", err)
	}

	return donors, nil
}

func (r *sqliteDonorRepo) Update(ctx context.Context, donor *models.Donor) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE donors SET name = ?, blood_group = ?, city = ?, contact = ?
		WHERE id = ?`,
		donor.Name, donor.BloodGroup, donor.City, donor.Contact, donor.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a donor with this contact is already registered", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update donor: %w", err)
	}
	return expectAffected(result)
}

func (r *sqliteDonorRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM donors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	return expectAffected(result)
}

func (r *sqliteDonorRepo) ExistsByContact(ctx context.Context, contact string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM donors WHERE contact = ?)`, contact).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check donor contact: %w", err)
	}
	return exists, nil
}

func (r *sqliteDonorRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count donors: %w", err)
	}
	return n, nil
}
