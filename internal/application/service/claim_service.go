package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claims-portal/internal/application/dispatcher"
	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/checklist"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/event"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
	"github.com/garyjia/claims-portal/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ClaimService manages claim intake and the claim status pipeline
type ClaimService interface {
	SubmitClaim(ctx context.Context, p entity.Principal, in SubmitClaimInput) (*entity.Claim, error)
	GetClaim(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error)
	ListClaims(ctx context.Context, p entity.Principal, f ListFilter) ([]*entity.Claim, error)
	Board(ctx context.Context, p entity.Principal) ([]BoardColumn, error)
	UpdateContact(ctx context.Context, p entity.Principal, id string, u ContactUpdate) (*entity.Claim, error)
	AssignInsurerClaimNumber(ctx context.Context, p entity.Principal, id, number string) (*entity.Claim, error)
	SetClaimStatus(ctx context.Context, p entity.Principal, id string, status workflow.State, comments string) (*entity.Claim, error)
	ArchiveClaim(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error)
	History(ctx context.Context, p entity.Principal, id string) ([]*entity.ClaimHistory, error)
}

// SubmitClaimInput is a client's claim submission
type SubmitClaimInput struct {
	ContactEmail        string
	ContactPhone        string
	Insured             entity.InsuredParty
	Category            string
	IncidentCategory    string
	Services            []string
	SpecializedSurgery  bool
	Description         string
	IncidentDate        *time.Time
	ReportedClaimNumber string
	SaveProfile         bool
}

// ListFilter narrows claim listings
type ListFilter struct {
	Statuses        []workflow.State
	IncludeArchived bool
	Limit           int
	Offset          int
}

// ContactUpdate carries the editable contact fields. Nil fields are left unchanged.
type ContactUpdate struct {
	ContactEmail *string
	ContactPhone *string
	Insured      *entity.InsuredParty
}

// BoardColumn is one status column of the staff kanban
type BoardColumn struct {
	Status workflow.State  `json:"status"`
	Label  string          `json:"label"`
	Claims []*entity.Claim `json:"claims"`
}

type claimServiceImpl struct {
	claimRepo   port.ClaimRepository
	historyRepo port.HistoryRepository
	profileRepo port.ProfileRepository
	txManager   port.TransactionManager
	dispatcher  dispatcher.Dispatcher
	logger      Logger

	now   func() time.Time
	newID func() string
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo port.ClaimRepository,
	historyRepo port.HistoryRepository,
	profileRepo port.ProfileRepository,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		profileRepo: profileRepo,
		txManager:   txManager,
		dispatcher:  d,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// SubmitClaim validates and stores a new pending claim
func (s *claimServiceImpl) SubmitClaim(ctx context.Context, p entity.Principal, in SubmitClaimInput) (*entity.Claim, error) {
	if p.Subject == "" {
		return nil, ErrForbidden
	}

	now := s.now()
	claim := &entity.Claim{
		OwnerID:             p.Subject,
		ContactEmail:        strings.TrimSpace(in.ContactEmail),
		ContactPhone:        utils.NormalizePhone(in.ContactPhone),
		Insured:             sanitizeParty(in.Insured),
		Category:            strings.TrimSpace(in.Category),
		IncidentCategory:    strings.TrimSpace(in.IncidentCategory),
		Services:            dedupe(in.Services),
		SpecializedSurgery:  in.SpecializedSurgery,
		Description:         utils.SanitizeString(in.Description),
		IncidentDate:        in.IncidentDate,
		ReportedClaimNumber: strings.TrimSpace(in.ReportedClaimNumber),
	}
	claim.Normalize()

	if err := validateClaim(claim, now); err != nil {
		return nil, err
	}

	claim.ID = s.newID()
	claim.Status = workflow.StatePending
	claim.CreatedAt = now
	claim.UpdatedAt = now
	claim.UpdatedBy = p.Subject

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}

		history := &entity.ClaimHistory{
			ClaimID:   claim.ID,
			ActorID:   p.Subject,
			NewStatus: claim.Status.String(),
			Action:    entity.ActionSubmit,
			Timestamp: now,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		if in.SaveProfile {
			profile := &entity.InsuredProfile{
				ID:           s.newID(),
				OwnerID:      p.Subject,
				Name:         claim.Insured.Name,
				Email:        claim.Insured.Email,
				PolicyNumber: claim.Insured.PolicyNumber,
				CheckDigit:   claim.Insured.CheckDigit,
				Insurer:      claim.Insured.Insurer,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.profileRepo.Upsert(txCtx, profile); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit claim", "error", err, "owner_id", p.Subject)
		return nil, err
	}

	s.logger.Info("Claim submitted", "claim_id", claim.ID, "owner_id", p.Subject, "category", claim.Category)
	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeClaimSubmitted, claim.ID, p.Subject, map[string]any{
		"category": claim.Category,
	}))
	return claim, nil
}

// GetClaim returns a claim by ID, archived or not
func (s *claimServiceImpl) GetClaim(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error) {
	return loadAccessibleClaim(ctx, s.claimRepo, p, id)
}

// ListClaims returns the caller's view: own claims for clients, all claims for staff
func (s *claimServiceImpl) ListClaims(ctx context.Context, p entity.Principal, f ListFilter) ([]*entity.Claim, error) {
	q := port.ClaimQuery{
		Statuses: f.Statuses,
		Limit:    f.Limit,
		Offset:   f.Offset,
	}
	if p.IsStaff() {
		q.IncludeArchived = f.IncludeArchived
	} else {
		if p.Subject == "" {
			return nil, ErrForbidden
		}
		q.OwnerID = p.Subject
	}

	claims, err := s.claimRepo.List(ctx, q)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err, "subject", p.Subject)
		return nil, err
	}
	return claims, nil
}

// Board groups active claims into one column per non-archived status
func (s *claimServiceImpl) Board(ctx context.Context, p entity.Principal) ([]BoardColumn, error) {
	if !p.IsStaff() {
		return nil, ErrForbidden
	}

	claims, err := s.claimRepo.List(ctx, port.ClaimQuery{})
	if err != nil {
		s.logger.Error("Failed to load board", "error", err)
		return nil, err
	}

	var columns []BoardColumn
	index := map[workflow.State]int{}
	for _, st := range workflow.ClaimStates() {
		if !st.IsActive() {
			continue
		}
		index[st] = len(columns)
		columns = append(columns, BoardColumn{Status: st, Label: st.Label(), Claims: []*entity.Claim{}})
	}

	for _, c := range claims {
		if i, ok := index[c.Status]; ok {
			columns[i].Claims = append(columns[i].Claims, c)
		}
	}
	return columns, nil
}

// UpdateContact edits contact and insured-party fields
func (s *claimServiceImpl) UpdateContact(ctx context.Context, p entity.Principal, id string, u ContactUpdate) (*entity.Claim, error) {
	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, id)
	if err != nil {
		return nil, err
	}

	if u.ContactEmail != nil {
		claim.ContactEmail = strings.TrimSpace(*u.ContactEmail)
	}
	if u.ContactPhone != nil {
		claim.ContactPhone = utils.NormalizePhone(*u.ContactPhone)
	}
	if u.Insured != nil {
		claim.Insured = sanitizeParty(*u.Insured)
	}

	var errs ValidationErrors
	validateContact(&errs, claim)
	validateParty(&errs, claim.Insured)
	if err := errs.err(); err != nil {
		return nil, err
	}

	claim.UpdatedAt = s.now()
	claim.UpdatedBy = p.Subject
	if err := s.claimRepo.UpdateContact(ctx, claim); err != nil {
		s.logger.Error("Failed to update contact", "error", err, "claim_id", id)
		return nil, err
	}

	s.logger.Info("Claim contact updated", "claim_id", id, "updated_by", p.Subject)
	return claim, nil
}

// AssignInsurerClaimNumber records the insurer's claim number
func (s *claimServiceImpl) AssignInsurerClaimNumber(ctx context.Context, p entity.Principal, id, number string) (*entity.Claim, error) {
	if !p.CanReview() {
		return nil, ErrForbidden
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, invalid("numero_reclamo_aseguradora", "is required")
	}

	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.SetInsurerClaimNumber(txCtx, id, number, p.Subject); err != nil {
			return fmt.Errorf("set insurer claim number: %w", err)
		}
		return s.historyRepo.Create(txCtx, &entity.ClaimHistory{
			ClaimID:        id,
			ActorID:        p.Subject,
			PreviousStatus: claim.Status.String(),
			NewStatus:      claim.Status.String(),
			Action:         entity.ActionAssignInsurerNumber,
			Comments:       number,
			Timestamp:      now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to assign insurer claim number", "error", err, "claim_id", id)
		return nil, err
	}

	claim.InsurerClaimNumber = number
	claim.UpdatedAt = now
	claim.UpdatedBy = p.Subject
	s.logger.Info("Insurer claim number assigned", "claim_id", id, "number", number)
	return claim, nil
}

// SetClaimStatus moves a claim along the pipeline. Requesting the current
// status only replaces the comments.
func (s *claimServiceImpl) SetClaimStatus(ctx context.Context, p entity.Principal, id string, status workflow.State, comments string) (*entity.Claim, error) {
	if !p.CanReview() {
		return nil, ErrForbidden
	}
	if !status.IsClaimState() {
		return nil, invalid("status", fmt.Sprintf("unknown claim status %q", status))
	}

	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, id)
	if err != nil {
		return nil, err
	}
	comments = strings.TrimSpace(comments)

	if claim.Status == status {
		if err := s.claimRepo.UpdateStatus(ctx, id, status, comments, p.Subject); err != nil {
			s.logger.Error("Failed to update status comments", "error", err, "claim_id", id)
			return nil, err
		}
		claim.StatusComments = comments
		claim.UpdatedAt = s.now()
		claim.UpdatedBy = p.Subject
		return claim, nil
	}

	trigger, ok := workflow.ClaimTriggerFor(claim.Status, status)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", workflow.ErrInvalidTransition, claim.Status, status)
	}

	action := entity.ActionSetStatus
	if status == workflow.StateArchived {
		action = entity.ActionArchive
	}
	return s.transition(ctx, p.Subject, claim, trigger, comments, action)
}

// ArchiveClaim removes a claim from active views. Owners and staff may archive.
func (s *claimServiceImpl) ArchiveClaim(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error) {
	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, p.Subject, claim, workflow.TriggerArchive, claim.StatusComments, entity.ActionArchive)
}

// History returns the audit trail of a claim
func (s *claimServiceImpl) History(ctx context.Context, p entity.Principal, id string) ([]*entity.ClaimHistory, error) {
	if _, err := loadAccessibleClaim(ctx, s.claimRepo, p, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByClaim(ctx, id)
	if err != nil {
		s.logger.Error("Failed to list history", "error", err, "claim_id", id)
		return nil, err
	}
	return entries, nil
}

// transition fires trigger on the claim's state machine and persists the
// resulting status with a history entry
func (s *claimServiceImpl) transition(ctx context.Context, actor string, claim *entity.Claim, trigger workflow.Trigger, comments, action string) (*entity.Claim, error) {
	next, err := nextClaimState(ctx, claim.Status, trigger)
	if err != nil {
		return nil, err
	}

	now := s.now()
	prev := claim.Status
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.UpdateStatus(txCtx, claim.ID, next, comments, actor); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return s.historyRepo.Create(txCtx, &entity.ClaimHistory{
			ClaimID:        claim.ID,
			ActorID:        actor,
			PreviousStatus: prev.String(),
			NewStatus:      next.String(),
			Action:         action,
			Comments:       comments,
			Timestamp:      now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to change claim status", "error", err, "claim_id", claim.ID, "trigger", trigger)
		return nil, err
	}

	claim.Status = next
	claim.StatusComments = comments
	claim.UpdatedAt = now
	claim.UpdatedBy = actor

	s.logger.Info("Claim status changed", "claim_id", claim.ID, "from", prev, "to", next, "actor", actor)

	eventType := event.TypeClaimStatusChanged
	if next == workflow.StateArchived {
		eventType = event.TypeClaimArchived
	}
	s.dispatcher.DispatchAsync(ctx, event.New(eventType, claim.ID, actor, map[string]any{
		"from": prev.String(),
		"to":   next.String(),
	}))
	return claim, nil
}

// nextClaimState resolves a trigger against the claim graph. Archiving
// always succeeds, even from a status the graph does not know.
func nextClaimState(ctx context.Context, current workflow.State, trigger workflow.Trigger) (workflow.State, error) {
	if !current.IsClaimState() {
		if trigger == workflow.TriggerArchive {
			return workflow.StateArchived, nil
		}
		return "", fmt.Errorf("%w: %s", workflow.ErrInvalidState, current)
	}

	sm := workflow.BuildClaimStateMachine(current)
	if err := sm.Fire(ctx, trigger); err != nil {
		return "", err
	}
	return sm.State(), nil
}

func loadAccessibleClaim(ctx context.Context, repo port.ClaimRepository, p entity.Principal, id string) (*entity.Claim, error) {
	claim, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	if !p.CanAccessClaim(claim) {
		return nil, ErrForbidden
	}
	return claim, nil
}

func sanitizeParty(in entity.InsuredParty) entity.InsuredParty {
	return entity.InsuredParty{
		Name:         utils.SanitizeString(in.Name),
		Email:        strings.TrimSpace(in.Email),
		PolicyNumber: strings.TrimSpace(in.PolicyNumber),
		CheckDigit:   strings.TrimSpace(in.CheckDigit),
		Insurer:      utils.SanitizeString(in.Insurer),
	}
}

// dedupe trims tags and drops blanks and repeats, keeping first occurrence order
func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func validateContact(errs *ValidationErrors, c *entity.Claim) {
	if err := utils.ValidateEmail(c.ContactEmail); err != nil {
		errs.add("contact_email", err.Error())
	}
	if err := utils.ValidatePhone(c.ContactPhone); err != nil {
		errs.add("contact_phone", err.Error())
	}
}

func validateParty(errs *ValidationErrors, party entity.InsuredParty) {
	if party.Name == "" {
		errs.add("insured.name", "is required")
	}
	if party.Email != "" {
		if err := utils.ValidateEmail(party.Email); err != nil {
			errs.add("insured.email", err.Error())
		}
	}
	if err := utils.ValidatePolicyNumber(party.PolicyNumber); err != nil {
		errs.add("insured.policy_number", err.Error())
	}
	if err := utils.ValidateCheckDigit(party.CheckDigit); err != nil {
		errs.add("insured.check_digit", err.Error())
	}
	if party.Insurer == "" {
		errs.add("insured.insurer", "is required")
	}
}

func validateClaim(c *entity.Claim, now time.Time) error {
	var errs ValidationErrors
	validateContact(&errs, c)
	validateParty(&errs, c.Insured)

	if !checklist.IsKnownCategory(c.Category) {
		errs.add("tipo_reclamo", fmt.Sprintf("unknown claim category %q", c.Category))
		return errs.err()
	}

	if c.Category == checklist.CategoryReembolso {
		switch c.IncidentCategory {
		case checklist.IncidentInicial:
		case checklist.IncidentComplemento:
			if c.ReportedClaimNumber == "" {
				errs.add("numero_reclamo", "is required for complemento claims")
			}
		default:
			errs.add("tipo_siniestro", fmt.Sprintf("unknown incident category %q", c.IncidentCategory))
		}
	}

	for _, tag := range c.Services {
		if !checklist.IsValidService(c.Category, tag) {
			errs.add("servicios", fmt.Sprintf("service %q is not available for %s", tag, c.Category))
		}
	}

	if c.IncidentDate != nil && c.IncidentDate.After(now) {
		errs.add("fecha_siniestro", "cannot be in the future")
	}

	return errs.err()
}
