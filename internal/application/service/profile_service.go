package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
)

// ProfileService manages a client's saved insured parties
type ProfileService interface {
	SaveProfile(ctx context.Context, p entity.Principal, party entity.InsuredParty) (*entity.InsuredProfile, error)
	ListProfiles(ctx context.Context, p entity.Principal) ([]*entity.InsuredProfile, error)
}

type profileServiceImpl struct {
	profileRepo port.ProfileRepository
	logger      Logger
	now         func() time.Time
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo port.ProfileRepository, logger Logger) ProfileService {
	return &profileServiceImpl{
		profileRepo: profileRepo,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SaveProfile stores the party for the caller, updating any profile with the
// same policy number
func (s *profileServiceImpl) SaveProfile(ctx context.Context, p entity.Principal, party entity.InsuredParty) (*entity.InsuredProfile, error) {
	if p.Subject == "" {
		return nil, ErrForbidden
	}

	party = sanitizeParty(party)
	var errs ValidationErrors
	validateParty(&errs, party)
	if err := errs.err(); err != nil {
		return nil, err
	}

	now := s.now()
	profile := &entity.InsuredProfile{
		ID:           uuid.NewString(),
		OwnerID:      p.Subject,
		Name:         party.Name,
		Email:        party.Email,
		PolicyNumber: party.PolicyNumber,
		CheckDigit:   party.CheckDigit,
		Insurer:      party.Insurer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		s.logger.Error("Failed to save profile", "error", err, "owner_id", p.Subject)
		return nil, err
	}

	s.logger.Info("Profile saved", "owner_id", p.Subject, "policy_number", profile.PolicyNumber)
	return profile, nil
}

// ListProfiles returns the caller's saved profiles
func (s *profileServiceImpl) ListProfiles(ctx context.Context, p entity.Principal) ([]*entity.InsuredProfile, error) {
	if p.Subject == "" {
		return nil, ErrForbidden
	}
	profiles, err := s.profileRepo.ListByOwner(ctx, p.Subject)
	if err != nil {
		s.logger.Error("Failed to list profiles", "error", err, "owner_id", p.Subject)
		return nil, err
	}
	return profiles, nil
}
