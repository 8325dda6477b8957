package handlers

import (
	"net/http"
	"strconv"

	"gatepass/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateEvent - POST /api/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.Create(c.Request.Context(), account, &req)
	if err != nil {
		h.fail(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListEvents - GET /api/events
func (h *Handlers) ListEvents(c *gin.Context) {
	query := c.Query("query")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	response, err := h.services.Events.List(c.Request.Context(), query, page, pageSize)
	if err != nil {
		h.fail(c, err, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := h.services.Events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		h.fail(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// Withdraw - POST /api/events/:id/withdraw
func (h *Handlers) Withdraw(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.services.Events.Withdraw(c.Request.Context(), account, eventID); err != nil {
		h.fail(c, err, "Failed to withdraw escrow")
		return
	}

	c.Status(http.StatusOK)
}

// EscrowBalance - GET /api/events/:id/escrow
func (h *Handlers) EscrowBalance(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	balance, err := h.services.Events.EscrowBalance(c.Request.Context(), eventID)
	if err != nil {
		h.fail(c, err, "Failed to get escrow balance")
		return
	}

	c.JSON(http.StatusOK, models.EscrowBalanceResponse{EventID: eventID, Balance: balance})
}
