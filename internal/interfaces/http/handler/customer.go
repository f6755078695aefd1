package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcrm "github.com/melihub/backend/internal/application/crm"
)

// CustomerHandler handles the customer CRM surface: sync, listing and
// post-sale messaging
type CustomerHandler struct {
	BaseHandler
	syncService    *appcrm.SyncService
	queryService   *appcrm.CustomerQueryService
	messageService *appcrm.MessageService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(
	syncService *appcrm.SyncService,
	queryService *appcrm.CustomerQueryService,
	messageService *appcrm.MessageService,
) *CustomerHandler {
	return &CustomerHandler{
		syncService:    syncService,
		queryService:   queryService,
		messageService: messageService,
	}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("/sync", h.Sync)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.POST("/:id/message", h.SendMessage)
		customers.POST("/message-all", h.SendMessageToAll)
	}
}

// Sync pulls the user's order feed and returns the refreshed customer
// set with per-buyer aggregates
func (h *CustomerHandler) Sync(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summaries, err := h.syncService.SyncOrders(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CustomerSummaryResponsesFromDomain(summaries))
}

// List returns the persisted customers, with cached aggregates when a
// recent sync left them behind
func (h *CustomerHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summaries, err := h.queryService.ListCustomers(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CustomerSummaryResponsesFromDomain(summaries))
}

// Get returns one customer by id
func (h *CustomerHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer id")
		return
	}

	customer, err := h.queryService.GetCustomer(c.Request.Context(), userID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CustomerResponseFromDomain(customer))
}

// SendMessage sends one post-sale message to a customer, scoped to
// their most recent recorded order
func (h *CustomerHandler) SendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer id")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.messageService.SendToCustomer(c.Request.Context(), userID, customerID, req.Text); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SendMessageToAll fans the message out to every customer, isolating
// per-recipient failures
func (h *CustomerHandler) SendMessageToAll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.messageService.SendToAll(c.Request.Context(), userID, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BroadcastResponse{
		Total:  result.Total,
		Sent:   result.Sent,
		Failed: result.Failed,
		SentTo: result.SentTo,
	})
}
