package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/pkg/email"
	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
	"github.com/adarshgogate/BloodDonorApp/repository"
	"github.com/adarshgogate/BloodDonorApp/ws"
)

// alertTimeout bounds the e-mail call made while filing a request.
const alertTimeout = 10 * time.Second

// BloodRequestService files and lists blood requests.
type BloodRequestService interface {
	Create(ctx context.Context, req *models.CreateBloodRequestRequest) (*models.BloodRequest, error)
	GetByID(ctx context.Context, id string) (*models.BloodRequest, error)
	List(ctx context.Context) ([]models.BloodRequest, error)
	// Search matches city and/or blood group, ignoring case. Name is ignored.
	Search(ctx context.Context, filter models.SearchFilter) ([]models.BloodRequest, error)
}

type bloodRequestService struct {
	requests repository.BloodRequestRepository
	hub      ws.EventPublisher
	alerts   email.AlertSender // nil when e-mail is not configured
	logger   log.Logger
}

// NewBloodRequestService returns the BloodRequestService. alerts may be nil.
func NewBloodRequestService(
	requests repository.BloodRequestRepository,
	hub ws.EventPublisher,
	alerts email.AlertSender,
	l log.Logger,
) BloodRequestService {
	return &bloodRequestService{
		requests: requests,
		hub:      hub,
		alerts:   alerts,
		logger:   logger.Component(l, "blood_requests"),
	}
}

// Create stores the request, broadcasts it and, when configured, mails an
// alert. A failed alert is logged; the request is already filed.
func (s *bloodRequestService) Create(ctx context.Context, req *models.CreateBloodRequestRequest) (*models.BloodRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	br := &models.BloodRequest{
		Name:       req.Name,
		BloodGroup: req.BloodGroup,
		City:       req.City,
		Contact:    req.Contact,
	}
	if err := s.requests.Create(ctx, br); err != nil {
		return nil, err
	}

	level.Info(s.logger).Log("msg", "blood request filed", "id", br.ID, "blood_group", br.BloodGroup, "city", br.City)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpBloodRequestCreate, Data: br})
	s.sendAlert(ctx, br)

	return br, nil
}

func (s *bloodRequestService) sendAlert(ctx context.Context, br *models.BloodRequest) {
	if s.alerts == nil {
		return
	}

	// Detached from the request so a client hang-up does not cancel the mail.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	err := s.alerts.SendBloodRequestAlert(ctx, email.BloodRequestAlert{
		Name:        br.Name,
		BloodGroup:  br.BloodGroup,
		City:        br.City,
		Contact:     br.Contact,
		RequestedAt: br.RequestDate,
	})
	if err != nil {
		level.Warn(s.logger).Log("msg", "blood request alert failed", "id", br.ID, "err", err)
	}
}

func (s *bloodRequestService) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *bloodRequestService) List(ctx context.Context) ([]models.BloodRequest, error) {
	return s.requests.List(ctx, models.SearchFilter{})
}

func (s *bloodRequestService) Search(ctx context.Context, filter models.SearchFilter) ([]models.BloodRequest, error) {
	filter = normalizeFilter(filter)
	filter.Name = ""
	if filter.City == "" && filter.BloodGroup == "" {
		return nil, fmt.Errorf("%w: city or blood group is required", pkg.ErrBadRequest)
	}
	return s.requests.List(ctx, filter)
}
