package lease_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/lease"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisLeaseTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
}

func (suite *RedisLeaseTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)
	suite.client = redis.NewClient(&redis.Options{Addr: endpoint})
}

func (suite *RedisLeaseTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.Require().NoError(suite.client.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RedisLeaseTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func TestRedisLeaseTestSuite(t *testing.T) {
	suite.Run(t, new(RedisLeaseTestSuite))
}

func (suite *RedisLeaseTestSuite) TestOnlyOneHolder() {
	ctx := context.Background()
	first := lease.NewRedisLease(suite.client, "fulfillment:", time.Minute)
	second := lease.NewRedisLease(suite.client, "fulfillment:", time.Minute)

	ok, err := first.TryAcquire(ctx, "lms-retry")
	suite.Require().NoError(err)
	suite.True(ok)

	ok, err = second.TryAcquire(ctx, "lms-retry")
	suite.Require().NoError(err)
	suite.False(ok)

	ttl, err := suite.client.TTL(ctx, "fulfillment:lms-retry").Result()
	suite.Require().NoError(err)
	suite.Positive(ttl)
}

func (suite *RedisLeaseTestSuite) TestReleaseOnlyByHolder() {
	ctx := context.Background()
	first := lease.NewRedisLease(suite.client, "fulfillment:", time.Minute)
	second := lease.NewRedisLease(suite.client, "fulfillment:", time.Minute)

	ok, err := first.TryAcquire(ctx, "lms-retry")
	suite.Require().NoError(err)
	suite.Require().True(ok)

	suite.Require().NoError(second.Release(ctx, "lms-retry"))
	exists, err := suite.client.Exists(ctx, "fulfillment:lms-retry").Result()
	suite.Require().NoError(err)
	suite.Equal(int64(1), exists)

	suite.Require().NoError(first.Release(ctx, "lms-retry"))
	ok, err = second.TryAcquire(ctx, "lms-retry")
	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *RedisLeaseTestSuite) TestExpiredLeaseIsNotReleasedByStaleHolder() {
	ctx := context.Background()
	first := lease.NewRedisLease(suite.client, "fulfillment:", 100*time.Millisecond)
	second := lease.NewRedisLease(suite.client, "fulfillment:", time.Minute)

	ok, err := first.TryAcquire(ctx, "lms-retry")
	suite.Require().NoError(err)
	suite.Require().True(ok)

	suite.Eventually(func() bool {
		ok, err = second.TryAcquire(ctx, "lms-retry")
		return err == nil && ok
	}, 5*time.Second, 50*time.Millisecond)

	suite.Require().NoError(first.Release(ctx, "lms-retry"))
	exists, err := suite.client.Exists(ctx, "fulfillment:lms-retry").Result()
	suite.Require().NoError(err)
	suite.Equal(int64(1), exists)
}
