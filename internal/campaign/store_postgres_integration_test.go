//go:build integration

package campaign_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"veriseq/internal/campaign"
	"veriseq/internal/ledger"
	"veriseq/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	store *campaign.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	pg := containers.NewPostgresContainer(s.T())

	pool, err := pgxpool.New(context.Background(), pg.DSN)
	s.Require().NoError(err)
	s.T().Cleanup(pool.Close)

	s.pool = pool
	s.store = campaign.NewPostgresStore(pool)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE TABLE campaigns")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newCampaign() campaign.Campaign {
	return campaign.Campaign{
		ID:        uuid.New(),
		Space:     "utf8_two_byte",
		Chunks:    4,
		State:     campaign.StatePending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		Summary:   ledger.Summary{ByStatus: map[ledger.Status]int{}},
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	c := s.newCampaign()

	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.Equal(c.Space, got.Space)
	s.Equal(campaign.StatePending, got.State)
	s.Nil(got.StartedAt)
}

func (s *PostgresStoreSuite) TestUpdateLifecycle() {
	ctx := context.Background()
	c := s.newCampaign()
	s.Require().NoError(s.store.Create(ctx, c))

	started := time.Now().UTC().Truncate(time.Microsecond)
	finished := started.Add(3 * time.Second)
	c.State = campaign.StateCompleted
	c.StartedAt = &started
	c.FinishedAt = &finished
	c.Skipped = 1
	c.Summary = ledger.Summary{
		Total:    3,
		ByStatus: map[ledger.Status]int{ledger.StatusSuccess: 3},
		Seconds:  2.5,
	}
	s.Require().NoError(s.store.Update(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(campaign.StateCompleted, got.State)
	s.Equal(1, got.Skipped)
	s.Equal(3, got.Summary.ByStatus[ledger.StatusSuccess])
	s.Require().NotNil(got.FinishedAt)
	s.True(got.FinishedAt.Equal(finished))
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.Require().Error(err)
}

func (s *PostgresStoreSuite) TestUpdateMissing() {
	err := s.store.Update(context.Background(), s.newCampaign())
	s.Require().Error(err)
}

func (s *PostgresStoreSuite) TestListOrdersByCreation() {
	ctx := context.Background()

	first := s.newCampaign()
	second := s.newCampaign()
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	s.Require().NoError(s.store.Create(ctx, second))
	s.Require().NoError(s.store.Create(ctx, first))

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)
}
