//go:build integration

package runlock

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RunLockIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	client    *redis.Client
	logger    *slog.Logger
}

func (s *RunLockIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	endpoint, err := container.Endpoint(s.ctx, "")
	s.Require().NoError(err)

	s.client = redis.NewClient(&redis.Options{Addr: endpoint})
	s.Require().NoError(s.client.Ping(s.ctx).Err())
}

func (s *RunLockIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RunLockIntegrationSuite) SetupTest() {
	s.client.FlushAll(s.ctx)
}

func TestRunLockIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RunLockIntegrationSuite))
}

func (s *RunLockIntegrationSuite) TestAcquireRelease() {
	lock := New(s.client, "pipeline:run", time.Minute, s.logger)

	acquired, err := lock.Acquire(s.ctx)
	s.NoError(err)
	s.True(acquired)

	acquired, err = lock.Acquire(s.ctx)
	s.NoError(err)
	s.False(acquired, "second acquire must fail while held")

	s.NoError(lock.Release(s.ctx))

	acquired, err = lock.Acquire(s.ctx)
	s.NoError(err)
	s.True(acquired, "released lock is reusable")
}

func (s *RunLockIntegrationSuite) TestTTLExpiry() {
	lock := New(s.client, "pipeline:run", 200*time.Millisecond, s.logger)

	acquired, err := lock.Acquire(s.ctx)
	s.NoError(err)
	s.True(acquired)

	time.Sleep(300 * time.Millisecond)

	acquired, err = lock.Acquire(s.ctx)
	s.NoError(err)
	s.True(acquired, "TTL frees the lock after a crashed run")
}

func (s *RunLockIntegrationSuite) TestTwoHolders() {
	first := New(s.client, "pipeline:run", time.Minute, s.logger)
	second := New(s.client, "pipeline:run", time.Minute, s.logger)

	acquired, err := first.Acquire(s.ctx)
	s.NoError(err)
	s.True(acquired)

	acquired, err = second.Acquire(s.ctx)
	s.NoError(err)
	s.False(acquired)
}
