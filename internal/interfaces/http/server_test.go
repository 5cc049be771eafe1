package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

const testSecret = "test-secret"

var (
	client   = entity.Principal{Subject: "client-1", Email: "ana@example.com", Roles: []string{entity.RoleClient}}
	operator = entity.Principal{Subject: "op-1", Roles: []string{entity.RoleOperator}}
)

type fixture struct {
	server *Server
	auth   *Authenticator
	claims *mockClaimService
	docs   *mockDocumentService
	notify *mockNotificationService
	export *mockExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth:   NewAuthenticator(testSecret, "", ""),
		claims: &mockClaimService{},
		docs:   &mockDocumentService{},
		notify: &mockNotificationService{},
		export: &mockExportService{},
	}
	f.server = NewServer(ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}}, Services{
		Claims:        f.claims,
		Documents:     f.docs,
		Notifications: f.notify,
		Export:        f.export,
	}, f.auth, func() bool { return true }, mockLogger{})
	return f
}

func (f *fixture) do(t *testing.T, p *entity.Principal, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		token, err := f.auth.Issue(*p, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestAuth_RejectsMissingAndInvalidTokens(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, nil, http.MethodGet, "/api/v1/claims", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := NewAuthenticator("another-secret", "", "")
	token, err := other.Issue(client, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticator_ParseRoundTrip(t *testing.T) {
	a := NewAuthenticator(testSecret, "portal", "claims")
	token, err := a.Issue(operator, time.Minute)
	require.NoError(t, err)

	p, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, operator, p)

	a.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = a.Parse(token)
	assert.Error(t, err, "expired")

	_, err = NewAuthenticator(testSecret, "other", "claims").Parse(token)
	assert.Error(t, err, "wrong issuer")
}

func TestSubmitClaim_PassesPrincipalAndInput(t *testing.T) {
	f := newFixture(t)
	var got service.SubmitClaimInput
	var gotPrincipal entity.Principal
	f.claims.submitFunc = func(ctx context.Context, p entity.Principal, in service.SubmitClaimInput) (*entity.Claim, error) {
		got, gotPrincipal = in, p
		return &entity.Claim{ID: "c1", Status: workflow.StatePending}, nil
	}

	w := f.do(t, &client, http.MethodPost, "/api/v1/claims", map[string]interface{}{
		"contact_email":   "ana@example.com",
		"contact_phone":   "+584121234567",
		"insured":         map[string]string{"name": "Ana", "policy_number": "POL-1", "insurer": "A"},
		"tipo_reclamo":    "reembolso",
		"tipo_siniestro":  "inicial",
		"servicios":       []string{"hospitales"},
		"fecha_siniestro": "2024-05-01",
		"save_profile":    true,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "client-1", gotPrincipal.Subject)
	assert.Equal(t, "reembolso", got.Category)
	assert.Equal(t, []string{"hospitales"}, got.Services)
	assert.True(t, got.SaveProfile)
	require.NotNil(t, got.IncidentDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *got.IncidentDate)
}

func TestSubmitClaim_BadDate(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, &client, http.MethodPost, "/api/v1/claims", map[string]string{"fecha_siniestro": "01/05/2024"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotNil(t, decode(t, w).Details)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ValidationErrors{{Field: "contact_email", Message: "invalid"}}, http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("claim x: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: archived -> verified", workflow.ErrInvalidTransition), http.StatusConflict},
		{workflow.ErrGuardFailed, http.StatusConflict},
		{fmt.Errorf("%w: boom", service.ErrNotificationFailed), http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.claims.getFunc = func(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error) {
				return nil, tt.err
			}

			w := f.do(t, &client, http.MethodGet, "/api/v1/claims/c1", nil)
			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", resp.Error)
			}
		})
	}
}

func TestListClaims_ParsesFilter(t *testing.T) {
	f := newFixture(t)
	var got service.ListFilter
	f.claims.listFunc = func(ctx context.Context, p entity.Principal, fl service.ListFilter) ([]*entity.Claim, error) {
		got = fl
		return []*entity.Claim{}, nil
	}

	w := f.do(t, &operator, http.MethodGet, "/api/v1/claims?status=pending,verified&include_archived=true&limit=10&offset=20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []workflow.State{workflow.StatePending, workflow.StateVerified}, got.Statuses)
	assert.True(t, got.IncludeArchived)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 20, got.Offset)

	w = f.do(t, &operator, http.MethodGet, "/api/v1/claims?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryServices(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, &client, http.MethodGet, "/api/v1/categories/maternidad/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data, isMap := decode(t, w).Data.(map[string]interface{})
	require.True(t, isMap)
	assert.Equal(t, "maternidad", data["category"])
	assert.Equal(t, []interface{}{"parto-natural", "cesarea"}, data["services"])

	w = f.do(t, &client, http.MethodGet, "/api/v1/categories/otro/services", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, nil, http.MethodGet, "/api/v1/categories/maternidad/services", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetClaimStatus(t *testing.T) {
	f := newFixture(t)
	f.claims.setStatusFunc = func(ctx context.Context, p entity.Principal, id string, status workflow.State, comments string) (*entity.Claim, error) {
		assert.Equal(t, "c1", id)
		assert.Equal(t, "falta firma", comments)
		return &entity.Claim{ID: id, Status: status}, nil
	}

	w := f.do(t, &operator, http.MethodPut, "/api/v1/claims/c1/status", StatusRequest{Status: "rejected", Comments: "falta firma"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, &operator, http.MethodPut, "/api/v1/claims/c1/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetDocumentStatus_AutoPromotionFailureKeepsReview(t *testing.T) {
	f := newFixture(t)
	f.docs.setStatusFunc = func(ctx context.Context, p entity.Principal, claimID, documentType string, requested workflow.State, comments string) (*service.DocumentReview, error) {
		review := &service.DocumentReview{Document: &entity.Document{DocumentType: documentType, Status: workflow.StateApproved}}
		return review, fmt.Errorf("%w: db locked", service.ErrAutoPromotion)
	}

	w := f.do(t, &operator, http.MethodPut, "/api/v1/claims/c1/documents/epicrisis/status", StatusRequest{Status: "approved", Comments: "ok"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, "document saved but claim verification failed", resp.Error)
}

func multipartBody(t *testing.T, files map[string]string, order []string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range order {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, name))
		h.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadFiles_PreservesOrder(t *testing.T) {
	f := newFixture(t)
	var got []service.UploadFile
	f.docs.uploadFunc = func(ctx context.Context, p entity.Principal, claimID, documentType string, files []service.UploadFile) (*service.UploadResult, error) {
		assert.Equal(t, "c1", claimID)
		assert.Equal(t, "informe-medico", documentType)
		got = files
		return &service.UploadResult{Document: &entity.Document{ID: "d1"}}, nil
	}

	body, contentType := multipartBody(t, map[string]string{"b.pdf": "BBB", "a.pdf": "A"}, []string{"b.pdf", "a.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/c1/documents/informe-medico/files", body)
	req.Header.Set("Content-Type", contentType)
	token, err := f.auth.Issue(client, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, got, 2)
	assert.Equal(t, "b.pdf", got[0].Name)
	assert.Equal(t, "BBB", string(got[0].Content))
	assert.Equal(t, "application/pdf", got[0].ContentType)
	assert.Equal(t, "a.pdf", got[1].Name)
}

func TestUploadFiles_PartialFailureReturnsStored(t *testing.T) {
	f := newFixture(t)
	f.docs.uploadFunc = func(ctx context.Context, p entity.Principal, claimID, documentType string, files []service.UploadFile) (*service.UploadResult, error) {
		return &service.UploadResult{Stored: []entity.DocumentFile{{ID: 1, Name: "a.pdf"}}}, errors.New("storage down")
	}

	body, contentType := multipartBody(t, map[string]string{"a.pdf": "A", "b.pdf": "B"}, []string{"a.pdf", "b.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/c1/documents/epicrisis/files", body)
	req.Header.Set("Content-Type", contentType)
	token, err := f.auth.Issue(client, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotNil(t, decode(t, w).Data)
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t)
	f.docs.deleteFunc = func(ctx context.Context, p entity.Principal, claimID string, fileID int64) error {
		assert.Equal(t, int64(42), fileID)
		return nil
	}

	w := f.do(t, &operator, http.MethodDelete, "/api/v1/claims/c1/files/42", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, &operator, http.MethodDelete, "/api/v1/claims/c1/files/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendStatusUpdate(t *testing.T) {
	f := newFixture(t)
	var gotMessage string
	f.notify.sendFunc = func(ctx context.Context, p entity.Principal, claimID, message string) error {
		gotMessage = message
		return nil
	}

	w := f.do(t, &operator, http.MethodPost, "/api/v1/claims/c1/notify", NotifyRequest{Message: "listo"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "listo", gotMessage)

	w = f.do(t, &operator, http.MethodPost, "/api/v1/claims/c1/notify", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportClaims(t *testing.T) {
	f := newFixture(t)
	f.export.exportFunc = func(ctx context.Context, p entity.Principal, fl service.ListFilter) ([]byte, error) {
		if !p.IsStaff() {
			return nil, service.ErrForbidden
		}
		return []byte("PK"), nil
	}

	w := f.do(t, &operator, http.MethodGet, "/api/v1/export/claims.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "PK", w.Body.String())

	w = f.do(t, &client, http.MethodGet, "/api/v1/export/claims.xlsx", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/claims", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
