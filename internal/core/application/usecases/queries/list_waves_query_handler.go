package queries

import (
	"context"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListWavesQueryHandler struct {
	db *gorm.DB
}

func NewListWavesQueryHandler(db *gorm.DB) ListWavesQueryHandler {
	return ListWavesQueryHandler{db: db}
}

func (h ListWavesQueryHandler) Handle(ctx context.Context, query ListWavesQuery) (ListWavesResponse, error) {
	if err := query.Validate(); err != nil {
		return ListWavesResponse{}, err
	}

	var conditions []string
	var args []any
	if query.status != nil {
		conditions = append(conditions, "w.status = ?")
		args = append(args, int(*query.status))
	}
	if query.priority != nil {
		conditions = append(conditions, "w.priority = ?")
		args = append(args, int(*query.priority))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	resp := ListWavesResponse{
		Waves: make([]WaveSummary, 0),
		Page:  query.page,
		Limit: query.limit,
	}
	db := h.db.WithContext(ctx)
	if err := db.Raw("SELECT COUNT(*) FROM picking_waves w "+where, args...).Scan(&resp.Total).Error; err != nil {
		return ListWavesResponse{}, err
	}
	resp.TotalPages = (resp.Total + int64(query.limit) - 1) / int64(query.limit)

	args = append(args, query.limit, (query.page-1)*query.limit)
	rows, err := db.Raw(`
		SELECT
			w.id,
			w.wave_number,
			w.status,
			w.priority,
			w.picker_id,
			w.total_orders,
			w.total_items,
			COALESCE((SELECT SUM(i.picked_quantity) FROM picklist_items i WHERE i.wave_id = w.id), 0),
			w.sla_deadline,
			w.created_at
		FROM picking_waves w
		`+where+`
		ORDER BY w.created_at DESC, w.id
		LIMIT ? OFFSET ?
	`, args...).Rows()
	if err != nil {
		return ListWavesResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id                  uuid.UUID
			pickerID            *uuid.UUID
			status, priority    int
			summary             WaveSummary
			deadline, createdAt time.Time
		)
		if err = rows.Scan(
			&id,
			&summary.WaveNumber,
			&status,
			&priority,
			&pickerID,
			&summary.TotalOrders,
			&summary.TotalItems,
			&summary.PickedItems,
			&deadline,
			&createdAt,
		); err != nil {
			return ListWavesResponse{}, err
		}

		if summary.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return ListWavesResponse{}, err
		}
		if summary.PickerID, err = optionalUUID(pickerID); err != nil {
			return ListWavesResponse{}, err
		}
		summary.Status = wave.Status(status).String()
		summary.Priority = kernel.Priority(priority).String()
		summary.SLADeadline = deadline.UTC()
		summary.CreatedAt = createdAt.UTC()
		resp.Waves = append(resp.Waves, summary)
	}
	if err = rows.Err(); err != nil {
		return ListWavesResponse{}, err
	}

	return resp, nil
}

func optionalUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
