package repository

import (
	"context"

	"github.com/adarshgogate/BloodDonorApp/models"
)

// BloodRequestRepository stores blood requests.
type BloodRequestRepository interface {
	Create(ctx context.Context, req *models.BloodRequest) error
	GetByID(ctx context.Context, id string) (*models.BloodRequest, error)
	// List returns requests matching filter (Name is ignored), newest first.
	List(ctx context.Context, filter models.SearchFilter) ([]models.BloodRequest, error)
	Count(ctx context.Context) (int, error)
}
