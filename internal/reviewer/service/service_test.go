package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capture-gateway/internal/reviewer/models"
	"capture-gateway/internal/reviewer/secrets"
	store "capture-gateway/internal/reviewer/store/reviewer"
	id "capture-gateway/pkg/domain"
	dErrors "capture-gateway/pkg/domain-errors"
	auditmem "capture-gateway/pkg/platform/audit/memory"
)

func newTestService(t *testing.T) (*Service, *auditmem.Publisher) {
	t.Helper()
	publisher := auditmem.New()
	svc, err := New(store.NewInMemory(), WithAuditPublisher(publisher))
	require.NoError(t, err)
	return svc, publisher
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newTestService(t)

	reviewer, secret, err := svc.Create(ctx, "ada@example.com", "Ada Lovelace", models.RoleReviewer)
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.NotEqual(t, secret, reviewer.SecretHash, "plaintext is never stored")
	require.NoError(t, secrets.Verify(secret, reviewer.SecretHash))

	created := publisher.ByAction("reviewer_created")
	require.Len(t, created, 1)
	assert.Equal(t, reviewer.ID.String(), created[0].ActorID)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _, err := svc.Create(ctx, "ada@example.com", "Ada", models.RoleReviewer)
	require.NoError(t, err)

	_, _, err = svc.Create(ctx, "ada@example.com", "Ada Again", models.RoleReviewer)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestCreate_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _, err := svc.Create(ctx, "not-an-email", "Ada", models.RoleReviewer)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newTestService(t)

	reviewer, _, err := svc.Create(ctx, "ada@example.com", "Ada", models.RoleReviewer)
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, reviewer.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	_, err = svc.Deactivate(ctx, reviewer.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	require.Len(t, publisher.ByAction("reviewer_deactivated"), 1)
}

func TestDeactivate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Deactivate(context.Background(), id.NewReviewerID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRotateSecret(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newTestService(t)

	reviewer, oldSecret, err := svc.Create(ctx, "ada@example.com", "Ada", models.RoleReviewer)
	require.NoError(t, err)

	rotated, newSecret, err := svc.RotateSecret(ctx, reviewer.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldSecret, newSecret)
	require.NoError(t, secrets.Verify(newSecret, rotated.SecretHash))
	require.Error(t, secrets.Verify(oldSecret, rotated.SecretHash), "old secret must stop working")

	require.Len(t, publisher.ByAction("reviewer_secret_rotated"), 1)
}

func TestVerifySecret(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	reviewer, secret, err := svc.Create(ctx, "ada@example.com", "Ada", models.RoleSupervisor)
	require.NoError(t, err)

	verified, err := svc.VerifySecret(ctx, "ada@example.com", secret)
	require.NoError(t, err)
	assert.Equal(t, reviewer.ID, verified.ID)

	_, err = svc.VerifySecret(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.VerifySecret(ctx, "nobody@example.com", secret)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestVerifySecret_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	reviewer, secret, err := svc.Create(ctx, "ada@example.com", "Ada", models.RoleReviewer)
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, reviewer.ID)
	require.NoError(t, err)

	_, err = svc.VerifySecret(ctx, "ada@example.com", secret)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestWithClock(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := New(store.NewInMemory(), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	reviewer, _, err := svc.Create(ctx, "ada@example.com", "Ada", models.RoleReviewer)
	require.NoError(t, err)
	assert.Equal(t, fixed, reviewer.CreatedAt)
}
