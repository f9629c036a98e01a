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

type sqliteBloodRequestRepo struct {
	db database.TxQuerier
}

// NewSQLiteBloodRequestRepo returns the SQLite BloodRequestRepository.
func NewSQLiteBloodRequestRepo(db database.TxQuerier) BloodRequestRepository {
	return &sqliteBloodRequestRepo{db: db}
}

const bloodRequestColumns = `id, name, blood_group, city, contact, request_date`

func (r *sqliteBloodRequestRepo) Create(ctx context.Context, req *models.BloodRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blood_requests (`+bloodRequestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.Name, req.BloodGroup, req.City, req.Contact, req.RequestDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create blood request: %w", err)
	}
	return nil
}

func (r *sqliteBloodRequestRepo) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bloodRequestColumns+` FROM blood_requests WHERE id = ?`, id)

	br := &models.BloodRequest{}
	err := row.Scan(&br.ID, &br.Name, &br.BloodGroup, &br.City, &br.Contact, &br.RequestDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blood request: %w", err)
	}
	return br, nil
}

func (r *sqliteBloodRequestRepo) List(ctx context.Context, filter models.SearchFilter) ([]models.BloodRequest, error) {
	where, args := filterClause(
		filterTerm{"city", filter.City},
		filterTerm{"blood_group", filter.BloodGroup},
	)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bloodRequestColumns+` FROM blood_requests`+where+` ORDER BY request_date DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}
	defer rows.Close()

	requests := []models.BloodRequest{}
	for rows.Next() {
		var br models.BloodRequest
		if err := rows.Scan(&br.ID, &br.Name, &br.BloodGroup, &br.City, &br.Contact, &br.RequestDate); err != nil {
			return nil, fmt.Errorf("failed to scan blood request row: %w", err)
		}
		requests = append(requests, br)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blood request rows: %w", err)
	}

	return requests, nil
}

func (r *sqliteBloodRequestRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blood_requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count blood requests: %w", err)
	}
	return n, nil
}
