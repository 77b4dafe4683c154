package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"payment-relay/internal/models"
	"payment-relay/internal/service"
	"payment-relay/pkg/middleware"
)

type TokenHandler struct {
	service *service.TokenService
	logger  *zap.Logger
}

func NewTokenHandler(service *service.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{
		service: service,
		logger:  logger,
	}
}

// AuthorizeToken handles POST /api/authorize-token
func (h *TokenHandler) AuthorizeToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	resp, err := h.service.RequestToken(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health. It never looks at the gateway.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *TokenHandler) writeError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		protocolErr   *service.GatewayProtocolError
		transportErr  *service.TransportError
	)

	requestID := zap.String("request_id", middleware.GetRequestID(c))

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validationErr.Message})

	case errors.As(err, &protocolErr):
		h.logger.Error("authorize-token error", zap.Error(err), requestID)
		diag := protocolErr.Diagnostic
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error: "No token in Authorize.net response",
			ANet:  &diag,
		})

	case errors.As(err, &transportErr):
		h.logger.Error("authorize-token error", zap.Error(err), requestID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Unable to generate token",
			ANet:  transportErr.Diagnostic,
			Hint:  transportErr.Hint,
		})

	default:
		h.logger.Error("authorize-token error", zap.Error(err), requestID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Unable to generate token"})
	}
}
