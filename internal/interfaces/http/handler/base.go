package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/interfaces/http/dto"
	"github.com/melihub/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getUserID extracts the authenticated user id from JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total, offset, limit int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, offset, limit))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts service-layer errors to HTTP responses. Domain
// errors map through the dto code table; marketplace sentinel and typed
// errors carry their own wire codes; anything else is a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	var upstreamErr *marketplace.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.ErrorWithCode(c, dto.ErrCodeUpstream, upstreamErr.Error())
		return
	}

	var rejectedErr *marketplace.PromotionRejectedError
	if errors.As(err, &rejectedErr) {
		h.ErrorWithCode(c, dto.ErrCodePromotionRejected, rejectedErr.Error())
		return
	}

	var deliveryErr *marketplace.DeliveryError
	if errors.As(err, &deliveryErr) {
		h.ErrorWithCode(c, dto.ErrCodeDelivery, deliveryErr.Error())
		return
	}

	switch {
	case errors.Is(err, marketplace.ErrNotLinked):
		h.ErrorWithCode(c, dto.ErrCodeNotLinked, "No linked MercadoLibre account")
	case errors.Is(err, marketplace.ErrTokenRefresh):
		h.ErrorWithCode(c, dto.ErrCodeTokenRefresh, "MercadoLibre token refresh failed")
	case errors.Is(err, marketplace.ErrInvalidRequest):
		h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
	case errors.Is(err, marketplace.ErrSellerNotEligible),
		errors.Is(err, marketplace.ErrItemNotEligible),
		errors.Is(err, marketplace.ErrItemNotNew):
		h.ErrorWithCode(c, dto.ErrCodePromotionRejected, err.Error())
	case errors.Is(err, marketplace.ErrOrderNotFound),
		errors.Is(err, marketplace.ErrItemNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, err.Error())
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
