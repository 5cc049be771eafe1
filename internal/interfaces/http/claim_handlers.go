package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/domain/checklist"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// SubmitClaimRequest is the body of POST /claims
type SubmitClaimRequest struct {
	ContactEmail        string              `json:"contact_email"`
	ContactPhone        string              `json:"contact_phone"`
	Insured             entity.InsuredParty `json:"insured"`
	Category            string              `json:"tipo_reclamo"`
	IncidentCategory    string              `json:"tipo_siniestro"`
	Services            []string            `json:"servicios"`
	SpecializedSurgery  bool                `json:"cirugia_especializada"`
	Description         string              `json:"descripcion"`
	IncidentDate        string              `json:"fecha_siniestro"`
	ReportedClaimNumber string              `json:"numero_reclamo"`
	SaveProfile         bool                `json:"save_profile"`
}

// ContactUpdateRequest is the body of PATCH /claims/:id/contact
type ContactUpdateRequest struct {
	ContactEmail *string              `json:"contact_email"`
	ContactPhone *string              `json:"contact_phone"`
	Insured      *entity.InsuredParty `json:"insured"`
}

// StatusRequest is the body of status changes
type StatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Comments string `json:"comments"`
}

// InsurerNumberRequest is the body of PUT /claims/:id/insurer-number
type InsurerNumberRequest struct {
	Number string `json:"numero_reclamo_aseguradora"`
}

// SubmitClaim handles POST /api/v1/claims
func (h *Handlers) SubmitClaim(c *gin.Context) {
	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	date, err := parseDate(req.IncidentDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	claim, err := h.claims.SubmitClaim(c.Request.Context(), principalFrom(c), service.SubmitClaimInput{
		ContactEmail:        req.ContactEmail,
		ContactPhone:        req.ContactPhone,
		Insured:             req.Insured,
		Category:            req.Category,
		IncidentCategory:    req.IncidentCategory,
		Services:            req.Services,
		SpecializedSurgery:  req.SpecializedSurgery,
		Description:         req.Description,
		IncidentDate:        date,
		ReportedClaimNumber: req.ReportedClaimNumber,
		SaveProfile:         req.SaveProfile,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, claim)
}

// ListClaims handles GET /api/v1/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	filter, valid := parseListFilter(c)
	if !valid {
		badRequest(c, "invalid query parameters")
		return
	}

	claims, err := h.claims.ListClaims(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, claims)
}

// GetClaim handles GET /api/v1/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	claim, err := h.claims.GetClaim(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// UpdateContact handles PATCH /api/v1/claims/:id/contact
func (h *Handlers) UpdateContact(c *gin.Context) {
	var req ContactUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	claim, err := h.claims.UpdateContact(c.Request.Context(), principalFrom(c), c.Param("id"), service.ContactUpdate{
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Insured:      req.Insured,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// AssignInsurerNumber handles PUT /api/v1/claims/:id/insurer-number
func (h *Handlers) AssignInsurerNumber(c *gin.Context) {
	var req InsurerNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	claim, err := h.claims.AssignInsurerClaimNumber(c.Request.Context(), principalFrom(c), c.Param("id"), req.Number)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// SetClaimStatus handles PUT /api/v1/claims/:id/status
func (h *Handlers) SetClaimStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	claim, err := h.claims.SetClaimStatus(c.Request.Context(), principalFrom(c), c.Param("id"), workflow.State(req.Status), req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// ArchiveClaim handles POST /api/v1/claims/:id/archive
func (h *Handlers) ArchiveClaim(c *gin.Context) {
	claim, err := h.claims.ArchiveClaim(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// ClaimHistory handles GET /api/v1/claims/:id/history
func (h *Handlers) ClaimHistory(c *gin.Context) {
	entries, err := h.claims.History(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}

// Board handles GET /api/v1/board
func (h *Handlers) Board(c *gin.Context) {
	columns, err := h.claims.Board(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, columns)
}

// CategoryServicesResponse lists the service tags selectable for a category
type CategoryServicesResponse struct {
	Category string   `json:"category"`
	Services []string `json:"services"`
}

// CategoryServices handles GET /api/v1/categories/:category/services
func (h *Handlers) CategoryServices(c *gin.Context) {
	category := c.Param("category")
	if !checklist.IsKnownCategory(category) {
		h.respondError(c, fmt.Errorf("category %q: %w", category, service.ErrNotFound))
		return
	}
	ok(c, http.StatusOK, CategoryServicesResponse{
		Category: category,
		Services: checklist.ServicesFor(category),
	})
}
