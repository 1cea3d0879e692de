package postgres_test

import (
	"context"
	"strings"
	"testing"
	"time"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/pickerrepo"
	"fulfillment/internal/adapters/out/postgres/riderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/model/picker"
	"fulfillment/internal/core/domain/model/rider"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// PostgresIntegrationTestSuite runs the repositories and the unit of work
// against a real PostgreSQL container.
type PostgresIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *PostgresIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *PostgresIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE " + strings.Join(postgres_adapter.Tables, ", ")).Error
	suite.Require().NoError(err)
}

func (suite *PostgresIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationTestSuite))
}

func (suite *PostgresIntegrationTestSuite) seedOrder(cart string) *order.Order {
	o, err := order.RestoreOrder(kernel.NewUUID(), "ORD-"+kernel.NewUUID().String()[:8], []byte(cart), "paid")
	suite.Require().NoError(err)
	dto := orderrepo.FromDomain(o)
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return o
}

func (suite *PostgresIntegrationTestSuite) seedPicker(name string, active bool) *picker.Picker {
	p, err := picker.RestorePicker(kernel.NewUUID(), name, active, picker.AvailabilityAvailable, []string{picker.PermissionExecute})
	suite.Require().NoError(err)
	dto := pickerrepo.FromDomain(p)
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return p
}

func (suite *PostgresIntegrationTestSuite) seedRider(name string) *rider.Rider {
	r, err := rider.NewRider(kernel.NewUUID(), name, "+62811", "motorbike")
	suite.Require().NoError(err)
	dto := riderrepo.FromDomain(r)
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return r
}

func (suite *PostgresIntegrationTestSuite) newWave(number string, priority kernel.Priority, deadline time.Time) *wave.Wave {
	a, err := wave.NewPicklistItem(wave.NewItemParams{
		OrderID: kernel.NewUUID(), SKU: "A", ProductName: "Apple", BinLocation: "A-1", Quantity: 2, ScanSequence: 1,
		FEFO: &wave.FEFOBatch{Batch: "B-202603", ExpiryDate: now.Add(48 * time.Hour)},
	})
	suite.Require().NoError(err)
	b, err := wave.NewPicklistItem(wave.NewItemParams{
		OrderID: kernel.NewUUID(), SKU: "B", ProductName: "Banana", BinLocation: "B-1", Quantity: 1, ScanSequence: 2,
	})
	suite.Require().NoError(err)

	w, err := wave.NewWave(wave.NewWaveParams{
		ID:          kernel.NewUUID(),
		Number:      number,
		Priority:    priority,
		Options:     wave.Options{FEFORequired: true},
		TotalOrders: 2,
		Items:       []*wave.PicklistItem{a, b},
		SLADeadline: deadline,
		CreatedAt:   now,
	})
	suite.Require().NoError(err)
	return w
}

func (suite *PostgresIntegrationTestSuite) newJob(number string, waveID kernel.UUID) (*packing.Job, kernel.UUID) {
	orderID := kernel.NewUUID()
	packer := kernel.NewUUID()
	job, err := packing.NewJob(packing.NewJobParams{
		ID:       kernel.NewUUID(),
		Number:   number,
		WaveID:   waveID,
		PackerID: &packer,
		Priority: kernel.PriorityHigh,
		Workflow: packing.WorkflowDedicatedPacker,
		Items: []packing.SourceItem{
			{OrderID: orderID, SKU: "A", ProductName: "Apple", Quantity: 2, PickedQuantity: 2},
		},
		Now: now,
	})
	suite.Require().NoError(err)
	return job, orderID
}
