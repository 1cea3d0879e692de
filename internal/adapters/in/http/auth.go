package http

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Permissions checked on routes. They are issued by the identity service.
const (
	PermPickingView     = "picking:view"
	PermPickingManage   = "picking:assign_manage"
	PermPickingExecute  = "picking:execute"
	PermPackingView     = "packing:view"
	PermPackingExecute  = "packing:execute"
	PermPackingManage   = "packing:manage"
	PermHandoverView    = "handover:view"
	PermHandoverManage  = "handover:manage"
	PermHandoverConfirm = "handover:confirm"
)

// Identity is the caller resolved from the bearer token.
type Identity struct {
	UserID      kernel.UUID
	Permissions []string
}

func (i Identity) Can(permission string) bool {
	return slices.Contains(i.Permissions, permission)
}

type claims struct {
	UserID      string   `json:"userId"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// JWTAuth verifies HMAC-signed bearer tokens and stores the Identity on the
// request context. The user id is read from userId, falling back to sub.
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			var c claims
			if _, err := parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
				return secret, nil
			}); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			raw := c.UserID
			if raw == "" {
				raw = c.Subject
			}
			userID, err := kernel.UUIDFromString(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no valid user id").SetInternal(err)
			}

			ctx.Set(identityKey, Identity{UserID: userID, Permissions: c.Permissions})
			return next(ctx)
		}
	}
}

// RequirePermission lets the request through when the caller holds any of
// the given permissions.
func RequirePermission(permissions ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := identity(ctx)
			if err != nil {
				return err
			}
			if !slices.ContainsFunc(permissions, id.Can) {
				return errs.NewForbiddenErrorWithCause("permission",
					fmt.Errorf("requires one of %s", strings.Join(permissions, ", ")))
			}
			return next(ctx)
		}
	}
}

var errNoIdentity = errors.New("request is not authenticated")

func identity(ctx echo.Context) (Identity, error) {
	id, ok := ctx.Get(identityKey).(Identity)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized).SetInternal(errNoIdentity)
	}
	return id, nil
}

func actor(ctx echo.Context) (*kernel.UUID, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	return &id.UserID, nil
}
