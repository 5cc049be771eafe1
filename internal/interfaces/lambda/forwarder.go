// Package lambda holds the API Gateway handlers of the CRM forwarder
// functions.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/pkg/utils"
)

// Verifier checks the webhook signature of an inbound request
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// Handler is an API Gateway v2 HTTP handler
type Handler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// JSON creates a JSON HTTP response with the given status code and value.
func JSON(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}, nil
}

// Error creates a JSON HTTP error response with the given status code and message.
func Error(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	return JSON(status, map[string]string{"error": msg})
}

// ContactHandler forwards claim contact syncs to the CRM
func ContactHandler(crm port.CRMNotifier, verifier Verifier, logger *zap.Logger) Handler {
	return forward(verifier, logger, func(ctx context.Context, body []byte) (int, error) {
		var c port.ContactSync
		if err := json.Unmarshal(body, &c); err != nil {
			return http.StatusBadRequest, errors.New("invalid JSON body")
		}
		if err := validateContact(c); err != nil {
			return http.StatusBadRequest, err
		}
		if err := crm.SyncContact(ctx, c); err != nil {
			logger.Error("Contact sync failed", zap.String("claim_id", c.ClaimID), zap.Error(err))
			return http.StatusBadGateway, errors.New("crm trigger failed")
		}
		return http.StatusOK, nil
	})
}

// StatusHandler forwards claim status notifications to the CRM
func StatusHandler(crm port.CRMNotifier, verifier Verifier, logger *zap.Logger) Handler {
	return forward(verifier, logger, func(ctx context.Context, body []byte) (int, error) {
		var u port.StatusUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			return http.StatusBadRequest, errors.New("invalid JSON body")
		}
		if err := validateStatus(u); err != nil {
			return http.StatusBadRequest, err
		}
		if err := crm.SendStatusUpdate(ctx, u); err != nil {
			logger.Error("Status update failed", zap.String("claim_id", u.ClaimID), zap.Error(err))
			return http.StatusBadGateway, errors.New("crm trigger failed")
		}
		return http.StatusOK, nil
	})
}

func forward(verifier Verifier, logger *zap.Logger, send func(ctx context.Context, body []byte) (int, error)) Handler {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if req.RequestContext.HTTP.Method != "" && req.RequestContext.HTTP.Method != http.MethodPost {
			return Error(http.StatusMethodNotAllowed, "method not allowed")
		}

		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return Error(http.StatusBadRequest, "invalid base64 body")
			}
			body = decoded
		}

		if verifier != nil {
			if err := verifier.Verify(body, toHeader(req.Headers)); err != nil {
				logger.Error("Rejected unsigned request", zap.Error(err))
				return Error(http.StatusUnauthorized, "invalid signature")
			}
		}

		status, err := send(ctx, body)
		if err != nil {
			return Error(status, err.Error())
		}
		return JSON(status, map[string]bool{"ok": true})
	}
}

func toHeader(in map[string]string) http.Header {
	h := http.Header{}
	for k, v := range in {
		h.Set(k, v)
	}
	return h
}

func validateContact(c port.ContactSync) error {
	if strings.TrimSpace(c.ClaimID) == "" {
		return errors.New("claim_id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if err := utils.ValidateEmail(c.Email); err != nil {
		return err
	}
	if c.Phone != "" {
		if err := utils.ValidatePhone(c.Phone); err != nil {
			return err
		}
	}
	return nil
}

func validateStatus(u port.StatusUpdate) error {
	if strings.TrimSpace(u.ClaimID) == "" {
		return errors.New("claim_id is required")
	}
	if strings.TrimSpace(u.Status) == "" {
		return errors.New("status is required")
	}
	if u.Email == "" && u.Phone == "" {
		return errors.New("email or phone is required")
	}
	if u.Email != "" {
		if err := utils.ValidateEmail(u.Email); err != nil {
			return err
		}
	}
	return nil
}
