// Package http is the REST surface of the fulfillment service. Handlers
// translate requests into commands and queries; every body is wrapped in
// Envelope and every error is rendered by ErrorHandler.
package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// Handlers bundles the use cases served over HTTP.
type Handlers struct {
	// Picking
	GenerateWaves     commands.GenerateWavesCommandHandler
	AssignWaves       commands.AssignWavesCommandHandler
	StartPicking      commands.StartPickingCommandHandler
	ScanItem          commands.ScanItemCommandHandler
	ReportPartialPick commands.ReportPartialPickCommandHandler
	CompletePicking   commands.CompletePickingCommandHandler
	CancelWave        commands.CancelWaveCommandHandler
	ListWaves         queries.ListWavesQueryHandler
	WaveSLAStatus     queries.WaveSLAStatusQueryHandler
	ExpiryAlerts      queries.ExpiryAlertsQueryHandler

	// Packing
	StartPacking       commands.StartPackingCommandHandler
	VerifyItem         commands.VerifyItemCommandHandler
	CompletePacking    commands.CompletePackingCommandHandler
	ReassignPackingJob commands.ReassignPackingJobCommandHandler
	UploadPackingPhoto commands.UploadPackingPhotoCommandHandler
	PackingJobStatus   queries.PackingJobStatusQueryHandler
	AwaitingHandover   queries.AwaitingHandoverQueryHandler
	PackingSLA         queries.PackingSLAQueryHandler

	// Handover
	AssignRider          commands.AssignRiderCommandHandler
	ConfirmHandover      commands.ConfirmHandoverCommandHandler
	UpdateHandoverStatus commands.UpdateHandoverStatusCommandHandler
	RetryLMSSync         commands.RetryLMSSyncCommandHandler
	AvailableRiders      queries.AvailableRidersQueryHandler
	LMSSyncStatus        queries.LMSSyncStatusQueryHandler
	HandoverSLA          queries.HandoverSLAQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h Handlers
}

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// Register mounts the API under /api/v1 behind auth. /health stays public.
func (s *Server) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1", auth)

	api.POST("/generate-waves", s.GenerateWaves, RequirePermission(PermPickingManage))
	api.POST("/assign-waves", s.AssignWaves, RequirePermission(PermPickingManage))
	api.GET("/waves", s.ListWaves, RequirePermission(PermPickingView, PermPickingManage))
	api.POST("/waves/:waveId/start", s.StartPicking, RequirePermission(PermPickingExecute))
	api.POST("/waves/:waveId/scan", s.ScanItem, RequirePermission(PermPickingExecute))
	api.POST("/waves/:waveId/partial-pick", s.ReportPartialPick, RequirePermission(PermPickingExecute))
	api.POST("/waves/:waveId/complete", s.CompletePicking, RequirePermission(PermPickingExecute))
	api.POST("/waves/:waveId/cancel", s.CancelWave, RequirePermission(PermPickingManage))
	api.GET("/sla-status", s.WaveSLAStatus, RequirePermission(PermPickingView, PermPickingManage))
	api.GET("/expiry-alerts", s.ExpiryAlerts, RequirePermission(PermPickingView, PermPickingManage))

	packing := api.Group("/packing")
	packing.POST("/start", s.StartPacking, RequirePermission(PermPackingExecute))
	packing.POST("/verify", s.VerifyItem, RequirePermission(PermPackingExecute))
	packing.POST("/complete", s.CompletePacking, RequirePermission(PermPackingExecute))
	packing.GET("/status/:jobId", s.PackingJobStatus, RequirePermission(PermPackingView, PermPackingExecute))
	packing.GET("/awaiting-handover", s.AwaitingHandover, RequirePermission(PermPackingView, PermHandoverManage))
	packing.GET("/sla-status", s.PackingSLAStatus, RequirePermission(PermPackingView))
	packing.PUT("/:jobId/reassign", s.ReassignPackingJob, RequirePermission(PermPackingManage))
	packing.POST("/:jobId/photos", s.UploadPackingPhoto, RequirePermission(PermPackingExecute))

	handover := api.Group("/handover")
	handover.POST("/assign-rider", s.AssignRider, RequirePermission(PermHandoverManage))
	handover.POST("/confirm", s.ConfirmHandover, RequirePermission(PermHandoverConfirm, PermHandoverManage))
	handover.PUT("/:handoverId/status", s.UpdateHandoverStatus, RequirePermission(PermHandoverManage, PermHandoverConfirm))
	handover.POST("/:handoverId/retry-lms-sync", s.RetryLMSSync, RequirePermission(PermHandoverManage))
	handover.GET("/riders/available", s.AvailableRiders, RequirePermission(PermHandoverView, PermHandoverManage))
	handover.GET("/lms-sync-status", s.LMSSyncStatus, RequirePermission(PermHandoverView, PermHandoverManage))
	handover.GET("/sla-status", s.HandoverSLAStatus, RequirePermission(PermHandoverView, PermHandoverManage))
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, map[string]string{"status": "healthy"})
}
