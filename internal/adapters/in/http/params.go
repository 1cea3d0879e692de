package http

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// pathUUID reads a required uuid path parameter.
func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		}); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromBytes(id[:])
}

// queryUUID reads an optional uuid query parameter.
func queryUUID(ctx echo.Context, name string) (*kernel.UUID, error) {
	var id *uuid.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, ctx.QueryParams(), &id); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	if id == nil {
		return nil, nil
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseUUID converts a validated request field.
func parseUUID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func parseOptionalUUID(name, raw string) (*kernel.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseUUID(name, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryInts binds optional integer query parameters; absent ones keep their
// current value.
func queryInts(ctx echo.Context, params map[string]*int) error {
	b := echo.QueryParamsBinder(ctx)
	for name, dst := range params {
		b = b.Int(name, dst)
	}
	if err := b.BindError(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("query", err)
	}
	return nil
}
