package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"

	"github.com/labstack/echo/v4"
)

type GenerateWavesRequest struct {
	OrderIDs          []string `json:"orderIds" validate:"required,min=1,dive,uuid"`
	Priority          string   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	MaxOrdersPerWave  int      `json:"maxOrdersPerWave" validate:"gte=0"`
	RouteOptimization bool     `json:"routeOptimization"`
	FEFORequired      bool     `json:"fefoRequired"`
	TagsAndBags       bool     `json:"tagsAndBags"`
}

type ScanItemRequest struct {
	SKU         string `json:"sku" validate:"required"`
	BinLocation string `json:"binLocation" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
}

type PartialPickRequest struct {
	SKU            string `json:"sku" validate:"required"`
	BinLocation    string `json:"binLocation" validate:"required"`
	Reason         string `json:"reason" validate:"required,oneof=OOS DAMAGED EXPIRY OTHER"`
	PickedQuantity int    `json:"pickedQuantity" validate:"gte=0"`
	Notes          string `json:"notes"`
	PhotoURL       string `json:"photoUrl" validate:"omitempty,url"`
}

type CancelWaveRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// GenerateWaves handles POST /api/v1/generate-waves - batches orders into waves.
func (s *Server) GenerateWaves(ctx echo.Context) error {
	var req GenerateWavesRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	orderIDs := make([]kernel.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := parseUUID("orderIds", raw)
		if err != nil {
			return err
		}
		orderIDs = append(orderIDs, id)
	}

	cmd, err := commands.NewGenerateWavesCommand(orderIDs, req.Priority, req.MaxOrdersPerWave, wave.Options{
		RouteOptimization: req.RouteOptimization,
		FEFORequired:      req.FEFORequired,
		TagsAndBags:       req.TagsAndBags,
	}, userID)
	if err != nil {
		return err
	}

	result, err := s.h.GenerateWaves.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, result)
}

// AssignWaves handles POST /api/v1/assign-waves - distributes unassigned waves to pickers.
func (s *Server) AssignWaves(ctx echo.Context) error {
	var maxWaves int
	if err := queryInts(ctx, map[string]*int{"maxWavesPerPicker": &maxWaves}); err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignWavesCommand(maxWaves, userID)
	if err != nil {
		return err
	}
	result, err := s.h.AssignWaves.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// ListWaves handles GET /api/v1/waves - pages through waves, newest first.
func (s *Server) ListWaves(ctx echo.Context) error {
	var page, limit int
	if err := queryInts(ctx, map[string]*int{"page": &page, "limit": &limit}); err != nil {
		return err
	}

	query, err := queries.NewListWavesQuery(ctx.QueryParam("status"), ctx.QueryParam("priority"), page, limit)
	if err != nil {
		return err
	}
	result, err := s.h.ListWaves.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// StartPicking handles POST /api/v1/waves/:waveId/start. The caller must be
// the picker the wave is assigned to.
func (s *Server) StartPicking(ctx echo.Context) error {
	waveID, err := pathUUID(ctx, "waveId")
	if err != nil {
		return err
	}
	id, err := identity(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewStartPickingCommand(waveID, id.UserID)
	if err != nil {
		return err
	}
	result, err := s.h.StartPicking.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// ScanItem handles POST /api/v1/waves/:waveId/scan.
func (s *Server) ScanItem(ctx echo.Context) error {
	waveID, err := pathUUID(ctx, "waveId")
	if err != nil {
		return err
	}
	var req ScanItemRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}
	id, err := identity(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewScanItemCommand(waveID, id.UserID, req.SKU, req.BinLocation, req.Quantity)
	if err != nil {
		return err
	}
	result, err := s.h.ScanItem.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// ReportPartialPick handles POST /api/v1/waves/:waveId/partial-pick.
func (s *Server) ReportPartialPick(ctx echo.Context) error {
	waveID, err := pathUUID(ctx, "waveId")
	if err != nil {
		return err
	}
	var req PartialPickRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}
	id, err := identity(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewReportPartialPickCommand(
		waveID, id.UserID,
		req.SKU, req.BinLocation, req.Reason,
		req.PickedQuantity,
		req.Notes, req.PhotoURL,
	)
	if err != nil {
		return err
	}
	result, err := s.h.ReportPartialPick.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// CompletePicking handles POST /api/v1/waves/:waveId/complete.
func (s *Server) CompletePicking(ctx echo.Context) error {
	waveID, err := pathUUID(ctx, "waveId")
	if err != nil {
		return err
	}
	id, err := identity(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCompletePickingCommand(waveID, id.UserID)
	if err != nil {
		return err
	}
	result, err := s.h.CompletePicking.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// CancelWave handles POST /api/v1/waves/:waveId/cancel.
func (s *Server) CancelWave(ctx echo.Context) error {
	waveID, err := pathUUID(ctx, "waveId")
	if err != nil {
		return err
	}
	var req CancelWaveRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelWaveCommand(waveID, req.Reason, userID)
	if err != nil {
		return err
	}
	if err = s.h.CancelWave.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, map[string]any{"waveId": waveID, "status": wave.StatusCancelled.String()})
}

// WaveSLAStatus handles GET /api/v1/sla-status - SLA buckets of active waves.
func (s *Server) WaveSLAStatus(ctx echo.Context) error {
	waveID, err := queryUUID(ctx, "waveId")
	if err != nil {
		return err
	}
	query, err := queries.NewWaveSLAStatusQuery(waveID)
	if err != nil {
		return err
	}
	result, err := s.h.WaveSLAStatus.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// ExpiryAlerts handles GET /api/v1/expiry-alerts - FEFO lines close to expiry.
func (s *Server) ExpiryAlerts(ctx echo.Context) error {
	var days int
	if err := queryInts(ctx, map[string]*int{"daysThreshold": &days}); err != nil {
		return err
	}
	query, err := queries.NewExpiryAlertsQuery(days)
	if err != nil {
		return err
	}
	result, err := s.h.ExpiryAlerts.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, map[string]any{
		"daysThreshold": query.DaysThreshold(),
		"alerts":        result,
	})
}
