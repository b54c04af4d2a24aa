//go:build integration

package reviewer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"capture-gateway/internal/reviewer/models"
	store "capture-gateway/internal/reviewer/store/reviewer"
	id "capture-gateway/pkg/domain"
	"capture-gateway/pkg/platform/sentinel"
	"capture-gateway/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "reviewers")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newAccount(email string) *models.Reviewer {
	r, err := models.NewReviewer(id.NewReviewerID(), email, "Test Reviewer", models.RoleReviewer, "hash", time.Now().UTC())
	s.Require().NoError(err)
	return r
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	account := s.newAccount("a@b.com")

	s.Require().NoError(s.store.Create(ctx, account))

	byID, err := s.store.GetByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(byID)
	s.Equal(account.Email, byID.Email)
	s.Equal(models.RoleReviewer, byID.Role)
	s.True(byID.Active)

	byEmail, err := s.store.GetByEmail(ctx, "a@b.com")
	s.Require().NoError(err)
	s.Require().NotNil(byEmail)
	s.Equal(account.ID, byEmail.ID)
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflict() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newAccount("a@b.com")))
	err := s.store.Create(ctx, s.newAccount("a@b.com"))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *PostgresStoreSuite) TestMissingReturnsNil() {
	ctx := context.Background()

	got, err := s.store.GetByID(ctx, id.NewReviewerID())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	account := s.newAccount("a@b.com")
	s.Require().NoError(s.store.Create(ctx, account))

	s.Require().NoError(account.Deactivate(time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, account))

	got, err := s.store.GetByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.False(got.Active)
}

func (s *PostgresStoreSuite) TestUpdateMissing() {
	err := s.store.Update(context.Background(), s.newAccount("ghost@b.com"))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListOrderedByEmail() {
	ctx := context.Background()

	for _, email := range []string{"c@b.com", "a@b.com", "b@b.com"} {
		s.Require().NoError(s.store.Create(ctx, s.newAccount(email)))
	}

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("a@b.com", list[0].Email)
	s.Equal("b@b.com", list[1].Email)
	s.Equal("c@b.com", list[2].Email)
}
