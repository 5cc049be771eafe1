package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claims-portal/internal/domain/entity"
)

// NotifyRequest is the body of POST /claims/:id/notify
type NotifyRequest struct {
	Message string `json:"message"`
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListProfiles handles GET /api/v1/profiles
func (h *Handlers) ListProfiles(c *gin.Context) {
	profiles, err := h.profiles.ListProfiles(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, profiles)
}

// SaveProfile handles POST /api/v1/profiles
func (h *Handlers) SaveProfile(c *gin.Context) {
	var party entity.InsuredParty
	if err := c.ShouldBindJSON(&party); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile, err := h.profiles.SaveProfile(c.Request.Context(), principalFrom(c), party)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, profile)
}

// SendStatusUpdate handles POST /api/v1/claims/:id/notify
func (h *Handlers) SendStatusUpdate(c *gin.Context) {
	var req NotifyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	if err := h.notifications.SendStatusUpdate(c.Request.Context(), principalFrom(c), c.Param("id"), req.Message); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"sent": true})
}

// ExportClaims handles GET /api/v1/export/claims.xlsx
func (h *Handlers) ExportClaims(c *gin.Context) {
	filter, valid := parseListFilter(c)
	if !valid {
		badRequest(c, "invalid query parameters")
		return
	}

	data, err := h.export.ExportClaims(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	name := "reclamos-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
