package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/database"
	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
	"github.com/adarshgogate/BloodDonorApp/repository"
)

type seedUser struct {
	username, email, password, role string
}

var seedUsers = []seedUser{
	{"admin", "admin@blooddonor.com", "admin123", models.RoleAdmin},
	{"user", "user@blooddonor.com", "user123", models.RoleUser},
}

var seedDonors = []models.Donor{
	{Name: "John Doe", BloodGroup: "A+", City: "Mumbai", Contact: "+91 9876543210"},
	{Name: "Jane Smith", BloodGroup: "O-", City: "Delhi", Contact: "+91 9876543211"},
	{Name: "Rajesh Kumar", BloodGroup: "B+", City: "Bangalore", Contact: "+91 9876543212"},
	{Name: "Priya Sharma", BloodGroup: "AB+", City: "Chennai", Contact: "+91 9876543213"},
	{Name: "Mohammed Ali", BloodGroup: "O+", City: "Hyderabad", Contact: "+91 9876543214"},
	{Name: "Sunita Patel", BloodGroup: "A-", City: "Pune", Contact: "+91 9876543215"},
}

var seedRequests = []models.BloodRequest{
	{Name: "Emergency Patient 1", BloodGroup: "A+", City: "Mumbai", Contact: "+91 8765432109"},
	{Name: "Critical Care Unit", BloodGroup: "O-", City: "Delhi", Contact: "+91 8765432108"},
	{Name: "Surgery Department", BloodGroup: "B+", City: "Bangalore", Contact: "+91 8765432107"},
	{Name: "Accident Victim", BloodGroup: "AB+", City: "Chennai", Contact: "+91 8765432106"},
	{Name: "Maternity Ward", BloodGroup: "O+", City: "Hyderabad", Contact: "+91 8765432105"},
}

// Seeder inserts the demo accounts and sample records.
type Seeder struct {
	db     *sql.DB
	hasher PasswordHasher
	now    func() time.Time
	logger log.Logger
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *sql.DB, hasher PasswordHasher, l log.Logger) *Seeder {
	return &Seeder{
		db:     db,
		hasher: hasher,
		now:    time.Now,
		logger: logger.Component(l, "seed"),
	}
}

// Run seeds in one transaction, so a failure leaves the store untouched.
// Each account is created only when its username is free; donors and
// requests only when their table is empty. Running it twice is a no-op.
func (s *Seeder) Run(ctx context.Context) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.seedUsers(ctx, repository.NewSQLiteUserRepo(tx)); err != nil {
			return err
		}
		if err := s.seedDonors(ctx, repository.NewSQLiteDonorRepo(tx)); err != nil {
			return err
		}
		return s.seedRequests(ctx, repository.NewSQLiteBloodRequestRepo(tx))
	})
}

func (s *Seeder) seedUsers(ctx context.Context, users repository.UserRepository) error {
	for _, su := range seedUsers {
		exists, err := users.ExistsByUsername(ctx, su.username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := s.hasher.Hash(su.password)
		if err != nil {
			return err
		}
		err = users.Create(ctx, &models.User{
			Username:     su.username,
			Email:        su.email,
			PasswordHash: hash,
			Role:         su.role,
			IsActive:     true,
			CreatedAt:    s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.username, err)
		}
		level.Info(s.logger).Log("msg", "seed user created", "user", su.username, "role", su.role)
	}
	return nil
}

// Sample records get increasing timestamps so listings come back in a
// stable newest-first order.
func (s *Seeder) seedDonors(ctx context.Context, donors repository.DonorRepository) error {
	n, err := donors.Count(ctx)
	if err != nil || n > 0 {
		return err
	}

	start := s.now().UTC()
	for i, d := range seedDonors {
		d.RegisteredAt = start.Add(time.Duration(i) * time.Second)
		if err := donors.Create(ctx, &d); err != nil {
			return fmt.Errorf("failed to seed donor %s: %w", d.Name, err)
		}
	}
	level.Info(s.logger).Log("msg", "sample donors created", "count", len(seedDonors))
	return nil
}

func (s *Seeder) seedRequests(ctx context.Context, requests repository.BloodRequestRepository) error {
	n, err := requests.Count(ctx)
	if err != nil || n > 0 {
		return err
	}

	start := s.now().UTC()
	for i, br := range seedRequests {
		br.RequestDate = start.Add(time.Duration(i) * time.Second)
		if err := requests.Create(ctx, &br); err != nil {
			return fmt.Errorf("failed to seed blood request %s: %w", br.Name, err)
		}
	}
	level.Info(s.logger).Log("msg", "sample blood requests created", "count", len(seedRequests))
	return nil
}
