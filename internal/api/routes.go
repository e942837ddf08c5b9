package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/internal/auth"
	"github.com/adiwidya/voxgate/server/internal/quota"
	"github.com/adiwidya/voxgate/server/internal/registry"
	"github.com/adiwidya/voxgate/server/internal/rpc"
)

// InitRoutes wires the REST surface and the WebSocket endpoint.
func InitRoutes(
	e *echo.Echo,
	hub *rpc.Hub,
	handler *rpc.Handler,
	ledger *quota.Ledger,
	reg *registry.Registry,
	issuer *auth.TokenIssuer,
	logger *zap.Logger,
) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "voxgate-server",
		})
	})

	// The JSON-RPC socket; access keys travel inside each tool call.
	e.GET("/ws", func(c echo.Context) error {
		return rpc.HandleWebSocket(hub, handler, c, logger)
	})

	v1 := e.Group("/api/v1")

	v1.POST("/auth/token", func(c echo.Context) error {
		return issueToken(c, ledger, issuer, logger)
	})

	v1.GET("/usage", func(c echo.Context) error {
		return getUsage(c, ledger, issuer, logger)
	})

	v1.GET("/providers", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"providers": reg.Available(),
			"defaults":  reg.Defaults(),
		})
	})
}

// issueToken exchanges a valid access key for a bearer token usable on the
// REST read endpoints.
func issueToken(c echo.Context, ledger *quota.Ledger, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	record, err := ledger.Peek(c.Request().Context(), req.AccessKey)
	if err != nil {
		logger.Warn("Token request rejected", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid access key",
		})
	}

	token, err := issuer.Generate(req.AccessKey, record.Tier)
	if err != nil {
		logger.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

func getUsage(c echo.Context, ledger *quota.Ledger, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	claims, err := bearerClaims(c, issuer)
	if err != nil {
		logger.Warn("Usage request rejected", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Missing or invalid bearer token",
		})
	}

	record, err := ledger.Peek(c.Request().Context(), claims.AccessKeyID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Access key no longer valid",
		})
	}

	return c.JSON(http.StatusOK, rpc.UsageProjection(record))
}

func bearerClaims(c echo.Context, issuer *auth.TokenIssuer) (*auth.Claims, error) {
	header := c.Request().Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, echo.ErrUnauthorized
	}
	return issuer.Validate(token)
}
