package waverepo

import (
	"context"
	"errors"

	"fulfillment/internal/adapters/out/postgres/pgerr"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWaveRepository implements ports.WaveRepository using GORM.
type GormWaveRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormWaveRepository(db *gorm.DB, tracker aggregateTracker) *GormWaveRepository {
	return &GormWaveRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormWaveRepository) Add(ctx context.Context, aggregate *wave.Wave) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, items := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "wave")
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every header column, including ones reset to zero values,
// and upserts the items.
func (r *GormWaveRepository) Update(ctx context.Context, aggregate *wave.Wave) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, items := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	result := db.Model(&WaveDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if len(items) > 0 {
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&items).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get locks the wave row until the transaction ends. Update rewrites the
// whole aggregate, so a concurrent scan or cancel must wait for this one.
func (r *GormWaveRepository) Get(ctx context.Context, id kernel.UUID) (*wave.Wave, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WaveDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("wave", id.String())
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, dto.ID)
	if err != nil {
		return nil, err
	}
	return toDomain(dto, items[dto.ID])
}

// ListUnassigned returns GENERATED waves without a picker, most urgent first.
// The rows stay locked, and a concurrent caller re-checks picker_id once it
// gets them, so no wave is handed out twice.
func (r *GormWaveRepository) ListUnassigned(ctx context.Context) ([]*wave.Wave, error) {
	var dtos []WaveDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND picker_id IS NULL", int(wave.StatusGenerated)).
		Order("priority DESC, sla_deadline ASC, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return []*wave.Wave{}, nil
	}

	ids := make([]uuid.UUID, 0, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
	}
	items, err := r.loadItems(ctx, ids...)
	if err != nil {
		return nil, err
	}

	waves := make([]*wave.Wave, 0, len(dtos))
	for _, dto := range dtos {
		w, err := toDomain(dto, items[dto.ID])
		if err != nil {
			return nil, err
		}
		waves = append(waves, w)
	}
	return waves, nil
}

func (r *GormWaveRepository) CountActiveByPicker(ctx context.Context) (map[kernel.UUID]int, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT picker_id, COUNT(*)
		FROM picking_waves
		WHERE picker_id IS NOT NULL AND status IN (?, ?)
		GROUP BY picker_id
	`, int(wave.StatusAssigned), int(wave.StatusPicking)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[kernel.UUID]int)
	for rows.Next() {
		var raw uuid.UUID
		var n int
		if err = rows.Scan(&raw, &n); err != nil {
			return nil, err
		}
		id, idErr := kernel.UUIDFromBytes(raw[:])
		if idErr != nil {
			return nil, idErr
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (r *GormWaveRepository) AddException(ctx context.Context, exception *wave.PickingException) error {
	dto := exceptionFromDomain(exception)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormWaveRepository) loadItems(ctx context.Context, waveIDs ...uuid.UUID) (map[uuid.UUID][]PicklistItemDTO, error) {
	var items []PicklistItemDTO
	if err := r.db.WithContext(ctx).
		Where("wave_id IN ?", waveIDs).
		Order("scan_sequence, id").
		Find(&items).Error; err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]PicklistItemDTO, len(waveIDs))
	for _, item := range items {
		grouped[item.WaveID] = append(grouped[item.WaveID], item)
	}
	return grouped, nil
}
