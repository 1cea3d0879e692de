package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpapi "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/idgen"
	"fulfillment/internal/adapters/out/lease"
	"fulfillment/internal/adapters/out/lms"
	"fulfillment/internal/adapters/out/photostore"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/lmssync"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/clock"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const leasePrefix = "fulfillment:lease:"

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      clock.Clock
	logger     *slog.Logger

	numbers *idgen.Snowflake
	lms     *lms.Client
	engine  *lmssync.Engine
	photos  *photostore.MinIOStorage
	lease   ports.Lease
	redis   *redis.Client
}

func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      clock.System{},
		logger:     logger,
	}

	numbers, err := idgen.NewSnowflake(cfg.SnowflakeNode)
	if err != nil {
		return nil, err
	}
	c.numbers = numbers

	c.lms = lms.NewClient(lms.Config{
		BaseURL:       cfg.LMSBaseURL,
		APIKey:        cfg.LMSAPIKey,
		Timeout:       cfg.LMSTimeout,
		RetryAttempts: cfg.LMSRetryAttempts,
		RetryDelay:    cfg.LMSRetryDelay,
	}, c.clock, logger)
	c.engine = lmssync.NewEngine(FuncSyncUoWFactory(func() lmssync.UoW {
		return c.uowFactory.Create()
	}), c.lms, c.clock, logger, lmssync.Config{MaxAttempts: cfg.LMSRetryMax})

	photos, err := photostore.NewMinIOStorage(photostore.Config{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
		PublicURL: cfg.MinIOPublicURL,
	})
	if err != nil {
		return nil, err
	}
	if err = photos.EnsureBucket(ctx); err != nil {
		logger.WarnContext(ctx, "Photo bucket is not ready, uploads will fail until it is", "error", err)
	}
	c.photos = photos

	if cfg.RedisAddr == "" {
		logger.InfoContext(ctx, "REDIS_ADDR not set, LMS retry lease is process-local")
		c.lease = lease.NewLocal()
		return c, nil
	}
	c.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err = c.redis.Ping(pingCtx).Err(); err != nil {
		logger.WarnContext(ctx, "Redis is not reachable, retry sweeps are skipped until it is", "addr", cfg.RedisAddr, "error", err)
	}
	c.lease = lease.NewRedisLease(c.redis, leasePrefix, lease.DefaultTTL)
	return c, nil
}

// Close releases connections opened by the root.
func (c *CompositionRoot) Close() error {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
	}
	return nil
}

func (c *CompositionRoot) pickingUoW() commands.PickingUoWFactory {
	return FuncPickingUoWFactory(func() commands.PickingUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) packingUoW() commands.PackingUoWFactory {
	return FuncPackingUoWFactory(func() commands.PackingUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) handoverUoW() commands.HandoverUoWFactory {
	return FuncHandoverUoWFactory(func() commands.HandoverUoW {
		return c.uowFactory.Create()
	})
}

// Picking

func (c *CompositionRoot) CreateGenerateWavesCommandHandler() commands.GenerateWavesCommandHandler {
	return commands.NewGenerateWavesCommandHandler(c.pickingUoW(), services.NewWaveGenerator(c.numbers, nil), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAssignWavesCommandHandler() commands.AssignWavesCommandHandler {
	return commands.NewAssignWavesCommandHandler(c.pickingUoW(), c.clock)
}

func (c *CompositionRoot) CreateStartPickingCommandHandler() commands.StartPickingCommandHandler {
	return commands.NewStartPickingCommandHandler(c.pickingUoW(), c.clock)
}

func (c *CompositionRoot) CreateScanItemCommandHandler() commands.ScanItemCommandHandler {
	return commands.NewScanItemCommandHandler(c.pickingUoW(), c.clock)
}

func (c *CompositionRoot) CreateReportPartialPickCommandHandler() commands.ReportPartialPickCommandHandler {
	return commands.NewReportPartialPickCommandHandler(c.pickingUoW(), c.clock)
}

func (c *CompositionRoot) CreateCompletePickingCommandHandler() commands.CompletePickingCommandHandler {
	return commands.NewCompletePickingCommandHandler(c.pickingUoW(), c.clock)
}

func (c *CompositionRoot) CreateCancelWaveCommandHandler() commands.CancelWaveCommandHandler {
	return commands.NewCancelWaveCommandHandler(c.pickingUoW(), c.clock)
}

// Packing

func (c *CompositionRoot) CreateStartPackingCommandHandler() commands.StartPackingCommandHandler {
	return commands.NewStartPackingCommandHandler(c.packingUoW(), c.numbers, c.clock)
}

func (c *CompositionRoot) CreateVerifyItemCommandHandler() commands.VerifyItemCommandHandler {
	return commands.NewVerifyItemCommandHandler(c.packingUoW(), c.clock)
}

func (c *CompositionRoot) CreateCompletePackingCommandHandler() commands.CompletePackingCommandHandler {
	return commands.NewCompletePackingCommandHandler(c.packingUoW(), c.clock)
}

func (c *CompositionRoot) CreateReassignPackingJobCommandHandler() commands.ReassignPackingJobCommandHandler {
	return commands.NewReassignPackingJobCommandHandler(c.packingUoW(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateUploadPackingPhotoCommandHandler() commands.UploadPackingPhotoCommandHandler {
	return commands.NewUploadPackingPhotoCommandHandler(c.packingUoW(), c.photos, c.clock)
}

// Handover

func (c *CompositionRoot) CreateAssignRiderCommandHandler() commands.AssignRiderCommandHandler {
	return commands.NewAssignRiderCommandHandler(c.handoverUoW(), c.engine, c.numbers, c.clock, c.cfg.HandoverSLA, c.logger)
}

func (c *CompositionRoot) CreateConfirmHandoverCommandHandler() commands.ConfirmHandoverCommandHandler {
	return commands.NewConfirmHandoverCommandHandler(c.handoverUoW(), c.engine, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateHandoverStatusCommandHandler() commands.UpdateHandoverStatusCommandHandler {
	return commands.NewUpdateHandoverStatusCommandHandler(c.handoverUoW(), c.engine, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRetryLMSSyncCommandHandler() commands.RetryLMSSyncCommandHandler {
	return commands.NewRetryLMSSyncCommandHandler(c.handoverUoW(), c.engine)
}

// HTTPHandlers bundles every use case for the REST adapter.
func (c *CompositionRoot) HTTPHandlers() httpapi.Handlers {
	return httpapi.Handlers{
		GenerateWaves:     c.CreateGenerateWavesCommandHandler(),
		AssignWaves:       c.CreateAssignWavesCommandHandler(),
		StartPicking:      c.CreateStartPickingCommandHandler(),
		ScanItem:          c.CreateScanItemCommandHandler(),
		ReportPartialPick: c.CreateReportPartialPickCommandHandler(),
		CompletePicking:   c.CreateCompletePickingCommandHandler(),
		CancelWave:        c.CreateCancelWaveCommandHandler(),
		ListWaves:         queries.NewListWavesQueryHandler(c.gormDB),
		WaveSLAStatus:     queries.NewWaveSLAStatusQueryHandler(c.gormDB, c.clock),
		ExpiryAlerts:      queries.NewExpiryAlertsQueryHandler(c.gormDB, c.clock),

		StartPacking:       c.CreateStartPackingCommandHandler(),
		VerifyItem:         c.CreateVerifyItemCommandHandler(),
		CompletePacking:    c.CreateCompletePackingCommandHandler(),
		ReassignPackingJob: c.CreateReassignPackingJobCommandHandler(),
		UploadPackingPhoto: c.CreateUploadPackingPhotoCommandHandler(),
		PackingJobStatus:   queries.NewPackingJobStatusQueryHandler(c.gormDB, c.clock),
		AwaitingHandover:   queries.NewAwaitingHandoverQueryHandler(c.gormDB, c.clock),
		PackingSLA:         queries.NewPackingSLAQueryHandler(c.gormDB, c.clock),

		AssignRider:          c.CreateAssignRiderCommandHandler(),
		ConfirmHandover:      c.CreateConfirmHandoverCommandHandler(),
		UpdateHandoverStatus: c.CreateUpdateHandoverStatusCommandHandler(),
		RetryLMSSync:         c.CreateRetryLMSSyncCommandHandler(),
		AvailableRiders:      queries.NewAvailableRidersQueryHandler(c.gormDB),
		LMSSyncStatus:        queries.NewLMSSyncStatusQueryHandler(c.gormDB, c.engine, c.clock),
		HandoverSLA:          queries.NewHandoverSLAQueryHandler(c.gormDB, c.clock),
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewLMSRetryJob(c.engine, c.lease, c.cfg.LMSRetrySchedule, c.logger),
	)
}

type FuncPickingUoWFactory func() commands.PickingUoW

func (f FuncPickingUoWFactory) Create() commands.PickingUoW {
	return f()
}

type FuncPackingUoWFactory func() commands.PackingUoW

func (f FuncPackingUoWFactory) Create() commands.PackingUoW {
	return f()
}

type FuncHandoverUoWFactory func() commands.HandoverUoW

func (f FuncHandoverUoWFactory) Create() commands.HandoverUoW {
	return f()
}

type FuncSyncUoWFactory func() lmssync.UoW

func (f FuncSyncUoWFactory) Create() lmssync.UoW {
	return f()
}
