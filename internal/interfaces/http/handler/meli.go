package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/melihub/backend/internal/application/integration"
)

// StoreVerifierRequest carries the PKCE code verifier generated by the
// dashboard before it redirects the browser to the authorization page
type StoreVerifierRequest struct {
	Verifier string `json:"verifier" binding:"required"`
}

// LinkRequest carries the authorization code returned by the redirect
type LinkRequest struct {
	Code string `json:"code" binding:"required"`
}

// MeliHandler handles the MercadoLibre account connection lifecycle
type MeliHandler struct {
	BaseHandler
	linkService *integration.LinkService
}

// NewMeliHandler creates a new MercadoLibre connection handler
func NewMeliHandler(linkService *integration.LinkService) *MeliHandler {
	return &MeliHandler{linkService: linkService}
}

// RegisterRoutes registers MercadoLibre connection routes
func (h *MeliHandler) RegisterRoutes(rg *gin.RouterGroup) {
	meli := rg.Group("/mercadolibre")
	{
		meli.POST("/verifier", h.StoreVerifier)
		meli.POST("/link", h.Link)
		meli.POST("/unlink", h.Unlink)
		meli.GET("/status", h.Status)
	}
}

// StoreVerifier stores the PKCE verifier for the authorization flow
func (h *MeliHandler) StoreVerifier(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req StoreVerifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.linkService.StoreVerifier(c.Request.Context(), userID, req.Verifier); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Link exchanges the authorization code and persists the credentials
func (h *MeliHandler) Link(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	status, err := h.linkService.Link(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// Unlink clears the user's marketplace credentials
func (h *MeliHandler) Unlink(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.linkService.Unlink(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Status reports the user's marketplace connection state
func (h *MeliHandler) Status(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	status, err := h.linkService.Status(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}
