package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

type AssignRiderRequest struct {
	JobID               string `json:"jobId" validate:"required,uuid"`
	RiderID             string `json:"riderId" validate:"required,uuid"`
	SpecialInstructions string `json:"specialInstructions" validate:"max=1000"`
}

type ConfirmHandoverRequest struct {
	HandoverID       string `json:"handoverId" validate:"required,uuid"`
	RiderID          string `json:"riderId" validate:"required,uuid"`
	ConfirmationCode string `json:"confirmationCode"`
}

type UpdateHandoverStatusRequest struct {
	Status             string `json:"status" validate:"required,oneof=CONFIRMED IN_TRANSIT DELIVERED CANCELLED"`
	CancellationReason string `json:"cancellationReason"`
	// AdditionalData carries the reason in the legacy request shape.
	AdditionalData *struct {
		CancellationReason string `json:"cancellationReason"`
	} `json:"additionalData"`
}

func (r UpdateHandoverStatusRequest) reason() string {
	if r.CancellationReason == "" && r.AdditionalData != nil {
		return r.AdditionalData.CancellationReason
	}
	return r.CancellationReason
}

// AssignRider handles POST /api/v1/handover/assign-rider. The LMS shipment
// is created after the assignment is stored; its outcome is in the body.
func (s *Server) AssignRider(ctx echo.Context) error {
	var req AssignRiderRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	jobID, err := parseUUID("jobId", req.JobID)
	if err != nil {
		return err
	}
	riderID, err := parseUUID("riderId", req.RiderID)
	if err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignRiderCommand(jobID, riderID, req.SpecialInstructions, userID)
	if err != nil {
		return err
	}
	result, err := s.h.AssignRider.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, result)
}

// ConfirmHandover handles POST /api/v1/handover/confirm.
func (s *Server) ConfirmHandover(ctx echo.Context) error {
	var req ConfirmHandoverRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	handoverID, err := parseUUID("handoverId", req.HandoverID)
	if err != nil {
		return err
	}
	riderID, err := parseUUID("riderId", req.RiderID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmHandoverCommand(handoverID, riderID, req.ConfirmationCode)
	if err != nil {
		return err
	}
	result, err := s.h.ConfirmHandover.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// UpdateHandoverStatus handles PUT /api/v1/handover/:handoverId/status.
func (s *Server) UpdateHandoverStatus(ctx echo.Context) error {
	handoverID, err := pathUUID(ctx, "handoverId")
	if err != nil {
		return err
	}
	var req UpdateHandoverStatusRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateHandoverStatusCommand(handoverID, req.Status, req.reason(), userID)
	if err != nil {
		return err
	}
	result, err := s.h.UpdateHandoverStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// RetryLMSSync handles POST /api/v1/handover/:handoverId/retry-lms-sync.
func (s *Server) RetryLMSSync(ctx echo.Context) error {
	handoverID, err := pathUUID(ctx, "handoverId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewRetryLMSSyncCommand(handoverID)
	if err != nil {
		return err
	}
	result, err := s.h.RetryLMSSync.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// AvailableRiders handles GET /api/v1/handover/riders/available.
func (s *Server) AvailableRiders(ctx echo.Context) error {
	result, err := s.h.AvailableRiders.Handle(ctx.Request().Context(), queries.NewAvailableRidersQuery())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// LMSSyncStatus handles GET /api/v1/handover/lms-sync-status.
func (s *Server) LMSSyncStatus(ctx echo.Context) error {
	result, err := s.h.LMSSyncStatus.Handle(ctx.Request().Context(), queries.NewLMSSyncStatusQuery())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// HandoverSLAStatus handles GET /api/v1/handover/sla-status.
func (s *Server) HandoverSLAStatus(ctx echo.Context) error {
	result, err := s.h.HandoverSLA.Handle(ctx.Request().Context(), queries.NewHandoverSLAQuery())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}
