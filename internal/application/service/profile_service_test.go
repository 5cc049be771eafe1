package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claims-portal/internal/domain/entity"
)

func TestProfileService(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, &mockLogger{})
	ctx := context.Background()

	party := entity.InsuredParty{Name: " Luis Gómez ", PolicyNumber: "POL-9", Insurer: "Mercantil"}
	profile, err := svc.SaveProfile(ctx, client, party)
	require.NoError(t, err)
	assert.Equal(t, "Luis Gómez", profile.Name)
	assert.Equal(t, client.Subject, profile.OwnerID)
	assert.NotEmpty(t, profile.ID)

	_, err = svc.SaveProfile(ctx, client, entity.InsuredParty{Name: "X"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SaveProfile(ctx, entity.Principal{}, party)
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := svc.ListProfiles(ctx, client)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.ListProfiles(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
