package postgres_test

import (
	"context"
	"time"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
)

func (suite *PostgresIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.WaveRepository())
	suite.NotNil(uow1.PackingJobRepository())
	suite.NotNil(uow1.HandoverRepository())
	suite.NotNil(uow1.RetryLedger())
	suite.NotNil(uow2.AuditRepository())
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "Should error when committing without active transaction")
	suite.Require().Error(uow.Rollback(ctx), "Should error when rolling back without active transaction")
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_CommitSpansRepositories() {
	ctx := context.Background()
	uow := suite.factory.Create()
	w := suite.newWave("WV-COMMIT", kernel.PriorityHigh, now.Add(time.Hour))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.WaveRepository().Add(ctx, w))
	suite.Require().NoError(uow.AuditRepository().Append(ctx,
		audit.NewEvent(audit.StreamWave, w.ID(), audit.WaveGenerated, nil, map[string]any{"waveNumber": w.Number()}, now)))
	suite.Require().NoError(uow.Commit(ctx))

	got, err := suite.factory.Create().WaveRepository().Get(ctx, w.ID())
	suite.Require().NoError(err)
	suite.Equal("WV-COMMIT", got.Number())

	var events int64
	suite.Require().NoError(suite.db.Table("audit_events").Where("stream_id = ?", w.ID().Bytes()).Count(&events).Error)
	suite.Equal(int64(1), events)
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsEveryWrite() {
	ctx := context.Background()
	uow := suite.factory.Create()
	w := suite.newWave("WV-ROLLBACK", kernel.PriorityHigh, now.Add(time.Hour))
	r := suite.seedRider("Rudi")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.WaveRepository().Add(ctx, w))

	loaded, err := uow.RiderRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.TakeHandover())
	suite.Require().NoError(uow.RiderRepository().Update(ctx, loaded))

	_, err = uow.WaveRepository().Get(ctx, w.ID())
	suite.Require().NoError(err, "wave is visible inside the transaction")

	suite.Require().NoError(uow.Rollback(ctx))

	fresh := suite.factory.Create()
	_, err = fresh.WaveRepository().Get(ctx, w.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	stored, err := fresh.RiderRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.True(stored.IsAssignable(), "rider availability must be untouched after rollback")
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_Isolation() {
	ctx := context.Background()
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	w1 := suite.newWave("WV-ISO-1", kernel.PriorityLow, now.Add(time.Hour))
	w2 := suite.newWave("WV-ISO-2", kernel.PriorityLow, now.Add(time.Hour))

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))
	suite.Require().NoError(uow1.WaveRepository().Add(ctx, w1))
	suite.Require().NoError(uow2.WaveRepository().Add(ctx, w2))

	_, err := uow1.WaveRepository().Get(ctx, w2.ID())
	suite.Require().Error(err, "uow1 must not see uow2's uncommitted wave")
	_, err = uow2.WaveRepository().Get(ctx, w1.ID())
	suite.Require().Error(err, "uow2 must not see uow1's uncommitted wave")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	fresh := suite.factory.Create()
	_, err = fresh.WaveRepository().Get(ctx, w1.ID())
	suite.Require().NoError(err)
	_, err = fresh.WaveRepository().Get(ctx, w2.ID())
	suite.Require().Error(err)
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()
	w := suite.newWave("WV-AUTO", kernel.PriorityMedium, now.Add(time.Hour))

	suite.Require().NoError(uow.WaveRepository().Add(ctx, w))

	got, err := suite.factory.Create().WaveRepository().Get(ctx, w.ID())
	suite.Require().NoError(err)
	suite.Equal(wave.StatusGenerated, got.Status())
}

func (suite *PostgresIntegrationTestSuite) TestUnitOfWork_TracksWrittenAggregates() {
	ctx := context.Background()
	factory := postgres_adapter.NewGormUnitOfWorkFactory(suite.db)
	uow, ok := factory.Create().(*postgres_adapter.GormUnitOfWork)
	suite.Require().True(ok)
	w := suite.newWave("WV-TRACK", kernel.PriorityMedium, now.Add(time.Hour))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.WaveRepository().Add(ctx, w))
	suite.Require().NoError(w.AssignTo(kernel.NewUUID(), now))
	suite.Require().NoError(uow.WaveRepository().Update(ctx, w))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(2, uow.TrackedCount())
}
