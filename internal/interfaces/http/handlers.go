package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	claims         service.ClaimService
	documents      service.DocumentService
	profiles       service.ProfileService
	notifications  service.NotificationService
	export         service.ExportService
	health         HealthFunc
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, health HealthFunc, maxUploadBytes int64, logger Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 100 << 20
	}
	return &Handlers{
		claims:         services.Claims,
		documents:      services.Documents,
		profiles:       services.Profiles,
		notifications:  services.Notifications,
		export:         services.Export,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.health != nil && !h.health() {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, Response{
		Success: code == http.StatusOK,
		Data: HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// respondError maps service and workflow errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	h.respondErrorWith(c, err, nil)
}

// respondErrorWith also returns data committed before the failure
func (h *Handlers) respondErrorWith(c *gin.Context, err error, data interface{}) {
	resp := Response{Success: false, Data: data, Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		resp.Details = validationDetails(err)
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed),
		errors.Is(err, workflow.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotificationFailed):
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrAutoPromotion):
		resp.Error = "document saved but claim verification failed"
	default:
		resp.Error = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, resp)
}

func validationDetails(err error) []*service.ValidationError {
	var many service.ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one *service.ValidationError
	if errors.As(err, &one) {
		return []*service.ValidationError{one}
	}
	return nil
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseListFilter reads status, include_archived, limit and offset
func parseListFilter(c *gin.Context) (service.ListFilter, bool) {
	var f service.ListFilter
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Statuses = append(f.Statuses, workflow.State(s))
			}
		}
	}
	f.IncludeArchived = c.Query("include_archived") == "true"

	var okLimit, okOffset bool
	f.Limit, okLimit = queryInt(c, "limit", 0)
	f.Offset, okOffset = queryInt(c, "offset", 0)
	return f, okLimit && okOffset
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &service.ValidationError{Field: "fecha_siniestro", Message: "must be a date (YYYY-MM-DD)"}
}
