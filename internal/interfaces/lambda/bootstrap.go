package lambda

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/config"
	"github.com/garyjia/claims-portal/internal/infrastructure/external/crm"
	"github.com/garyjia/claims-portal/pkg/utils"
)

// Bootstrap loads environment configuration and builds the CRM client and
// logger shared by both forwarder functions.
func Bootstrap() (*crm.Client, *zap.Logger, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateCRM(); err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stdout",
		Format:     "json",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := crm.NewClient(crm.Config{
		ContactURL:    cfg.CRM.ContactURL,
		StatusURL:     cfg.CRM.StatusURL,
		SigningSecret: cfg.CRM.SigningSecret,
		Timeout:       cfg.CRM.Timeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}
