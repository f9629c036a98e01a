package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
	"github.com/adarshgogate/BloodDonorApp/repository"
	"github.com/adarshgogate/BloodDonorApp/ws"
)

// DonorService manages the donor registry. Every write is broadcast to the
// live feed.
type DonorService interface {
	Create(ctx context.Context, req *models.CreateDonorRequest) (*models.Donor, error)
	GetByID(ctx context.Context, id string) (*models.Donor, error)
	List(ctx context.Context) ([]models.Donor, error)
	// Search matches every non-empty field of filter, ignoring case.
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Donor, error)
	Update(ctx context.Context, id string, req *models.UpdateDonorRequest) (*models.Donor, error)
	Delete(ctx context.Context, id string) error
}

type donorService struct {
	donors repository.DonorRepository
	hub    ws.EventPublisher
	logger log.Logger
}

// NewDonorService returns the DonorService.
func NewDonorService(donors repository.DonorRepository, hub ws.EventPublisher, l log.Logger) DonorService {
	return &donorService{
		donors: donors,
		hub:    hub,
		logger: logger.Component(l, "donors"),
	}
}

func (s *donorService) Create(ctx context.Context, req *models.CreateDonorRequest) (*models.Donor, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// The unique index still catches a concurrent duplicate in Create.
	taken, err := s.donors.ExistsByContact(ctx, req.Contact)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: a donor with this contact is already registered", pkg.ErrAlreadyExists)
	}

	donor := &models.Donor{
		Name:       req.Name,
		BloodGroup: req.BloodGroup,
		City:       req.City,
		Contact:    req.Contact,
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, err
	}

	level.Info(s.logger).Log("msg", "donor registered", "id", donor.ID, "blood_group", donor.BloodGroup, "city", donor.City)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpDonorCreate, Data: donor})
	return donor, nil
}

func (s *donorService) GetByID(ctx context.Context, id string) (*models.Donor, error) {
	return s.donors.GetByID(ctx, id)
}

func (s *donorService) List(ctx context.Context) ([]models.Donor, error) {
	return s.donors.List(ctx, models.SearchFilter{})
}

func (s *donorService) Search(ctx context.Context, filter models.SearchFilter) ([]models.Donor, error) {
	filter = normalizeFilter(filter)
	if filter.Name == "" && filter.City == "" && filter.BloodGroup == "" {
		return nil, fmt.Errorf("%w: at least one search term is required", pkg.ErrBadRequest)
	}
	return s.donors.List(ctx, filter)
}

// Update applies the non-blank fields of req. Changing the contact to one
// another donor already uses fails with ErrAlreadyExists.
func (s *donorService) Update(ctx context.Context, id string, req *models.UpdateDonorRequest) (*models.Donor, error) {
	donor, err := s.donors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(donor)
	if err := s.donors.Update(ctx, donor); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpDonorUpdate, Data: donor})
	return donor, nil
}

func (s *donorService) Delete(ctx context.Context, id string) error {
	if err := s.donors.Delete(ctx, id); err != nil {
		return err
	}

	level.Info(s.logger).Log("msg", "donor deleted", "id", id)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpDonorDelete, Data: ws.DeletedData{ID: id}})
	return nil
}

func normalizeFilter(f models.SearchFilter) models.SearchFilter {
	return models.SearchFilter{
		Name:       strings.TrimSpace(f.Name),
		City:       strings.TrimSpace(f.City),
		BloodGroup: models.NormalizeBloodGroup(f.BloodGroup),
	}
}
