package postgres

import (
	"fmt"

	"fulfillment/internal/adapters/out/postgres/auditrepo"
	"fulfillment/internal/adapters/out/postgres/handoverrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/packingrepo"
	"fulfillment/internal/adapters/out/postgres/pickerrepo"
	"fulfillment/internal/adapters/out/postgres/riderrepo"
	"fulfillment/internal/adapters/out/postgres/waverepo"
	"fulfillment/internal/core/domain/model/handover"

	"gorm.io/gorm"
)

// Tables lists every table owned by the service, in truncation-safe order.
var Tables = []string{
	"audit_events",
	"lms_retry_queue",
	"lms_shipments",
	"handovers",
	"riders",
	"package_seals",
	"photo_evidence",
	"packing_items",
	"packing_jobs",
	"picking_exceptions",
	"picklist_items",
	"picking_waves",
	"pickers",
	"orders",
}

// Migrate creates or updates the schema. A job may have many cancelled
// handovers but only one that is still live.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&pickerrepo.PickerDTO{},
		&waverepo.WaveDTO{},
		&waverepo.PicklistItemDTO{},
		&waverepo.PickingExceptionDTO{},
		&packingrepo.JobDTO{},
		&packingrepo.ItemDTO{},
		&packingrepo.PhotoDTO{},
		&packingrepo.SealDTO{},
		&riderrepo.RiderDTO{},
		&handoverrepo.HandoverDTO{},
		&handoverrepo.ShipmentDTO{},
		&handoverrepo.RetryEntryDTO{},
		&auditrepo.EventDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_handovers_live_job ON handovers (job_id) WHERE status <> %d`,
		int(handover.StatusCancelled),
	)).Error; err != nil {
		return fmt.Errorf("create live handover index: %w", err)
	}
	return nil
}
