package repository

import (
	"context"

	"github.com/adarshgogate/BloodDonorApp/models"
)

// DonorRepository stores donors.
type DonorRepository interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByID(ctx context.Context, id string) (*models.Donor, error)
	// List returns donors matching filter, newest registration first.
	// A zero filter returns every donor.
	List(ctx context.Context, filter models.SearchFilter) ([]models.Donor, error)
	Update(ctx context.Context, donor *models.Donor) error
	Delete(ctx context.Context, id string) error
	ExistsByContact(ctx context.Context, contact string) (bool, error)
	Count(ctx context.Context) (int, error)
}
