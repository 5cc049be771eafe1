package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/config"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/event"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "claims.db")},
		Storage: config.StorageConfig{
			Driver: config.DriverLocal,
			Local:  config.LocalConfig{BaseDir: filepath.Join(dir, "files"), PublicURL: "/files"},
		},
		Auth:    config.AuthConfig{JWTSecret: "secret"},
		Uploads: config.UploadsConfig{MaxFileSize: 1 << 20, MaxFiles: 5, AllowedTypes: []string{"application/pdf"}},
	}
}

func TestNewContainer_ValidatesConfig(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Auth.JWTSecret = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start")

	health := c.Health()
	assert.True(t, health.Overall, health.Components)
	assert.Equal(t, cfg.Storage.Local.BaseDir, c.LocalFilesDir())

	for _, typ := range event.AllTypes() {
		assert.Contains(t, c.Dispatcher().Handlers(typ), "audit-log")
	}
	assert.Contains(t, c.Dispatcher().Handlers(event.TypeClaimSubmitted), "crm-contact-sync")

	operator := entity.Principal{Subject: "op-1", Roles: []string{entity.RoleOperator}}
	claims, err := c.Services().Claim.ListClaims(context.Background(), operator, service.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, claims)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close(), "second close")
	assert.Error(t, c.Start(context.Background()), "start after close")
}
