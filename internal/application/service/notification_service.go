package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/claims-portal/internal/application/dispatcher"
	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/event"
)

// NotificationService forwards claim events to the CRM
type NotificationService interface {
	// SendStatusUpdate notifies the insured party of the claim's current status
	SendStatusUpdate(ctx context.Context, p entity.Principal, claimID, message string) error

	// RegisterHandlers subscribes the CRM contact sync to claim submissions
	RegisterHandlers(d dispatcher.Dispatcher)
}

type notificationServiceImpl struct {
	claimRepo port.ClaimRepository
	crm       port.CRMNotifier
	logger    Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(claimRepo port.ClaimRepository, crm port.CRMNotifier, logger Logger) NotificationService {
	return &notificationServiceImpl{
		claimRepo: claimRepo,
		crm:       crm,
		logger:    logger,
	}
}

// SendStatusUpdate triggers the CRM status automation. Failures are returned
// to the caller and never touch claim state.
func (s *notificationServiceImpl) SendStatusUpdate(ctx context.Context, p entity.Principal, claimID, message string) error {
	if !p.CanReview() {
		return ErrForbidden
	}

	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, claimID)
	if err != nil {
		return err
	}

	update := port.StatusUpdate{
		ClaimID:            claim.ID,
		Name:               claim.Insured.Name,
		Email:              claim.ContactEmail,
		Phone:              claim.ContactPhone,
		Status:             claim.Status.String(),
		StatusLabel:        claim.Status.Label(),
		InsurerClaimNumber: claim.InsurerClaimNumber,
		Message:            strings.TrimSpace(message),
	}
	if err := s.crm.SendStatusUpdate(ctx, update); err != nil {
		s.logger.Error("Failed to send status update", "error", err, "claim_id", claimID)
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	s.logger.Info("Status update sent", "claim_id", claimID, "status", claim.Status, "actor", p.Subject)
	return nil
}

func (s *notificationServiceImpl) RegisterHandlers(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeClaimSubmitted, "crm-contact-sync", s.syncContact)
}

func (s *notificationServiceImpl) syncContact(ctx context.Context, evt *event.Event) error {
	claim, err := s.claimRepo.GetByID(ctx, evt.ClaimID)
	if err != nil {
		return fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return fmt.Errorf("claim %s: %w", evt.ClaimID, ErrNotFound)
	}

	contact := port.ContactSync{
		ClaimID:      claim.ID,
		Name:         claim.Insured.Name,
		Email:        claim.ContactEmail,
		Phone:        claim.ContactPhone,
		PolicyNumber: claim.Insured.PolicyNumber,
		Insurer:      claim.Insured.Insurer,
		Category:     claim.Category,
	}
	if err := s.crm.SyncContact(ctx, contact); err != nil {
		return fmt.Errorf("sync contact: %w", err)
	}

	s.logger.Info("Contact synced to CRM", "claim_id", claim.ID)
	return nil
}
