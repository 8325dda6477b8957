package handlers

import (
	"net/http"
	"strconv"

	"gatepass/internal/models"

	"github.com/gin-gonic/gin"
)

// MintTicket - POST /api/tickets
func (h *Handlers) MintTicket(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req models.MintTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Tickets.Mint(c.Request.Context(), account, &req)
	if err != nil {
		h.fail(c, err, "Failed to mint ticket")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ResaleTicket - POST /api/tickets/:id/resale
func (h *Handlers) ResaleTicket(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req models.ResaleTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Tickets.Resale(c.Request.Context(), account, ticketID, &req); err != nil {
		h.fail(c, err, "Failed to resell ticket")
		return
	}

	c.Status(http.StatusOK)
}

// TransferTicket - POST /api/tickets/:id/transfer
// Kept on the surface so clients get the explicit rejection instead of
// a 404: tickets only move through the resale path.
func (h *Handlers) TransferTicket(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req models.TransferTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Tickets.Transfer(c.Request.Context(), account, ticketID, req.To); err != nil {
		h.fail(c, err, "Ticket transfer rejected")
		return
	}

	c.Status(http.StatusOK)
}

// TicketOwner - GET /api/tickets/:id/owner
func (h *Handlers) TicketOwner(c *gin.Context) {
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	owner, err := h.services.Tickets.OwnerOf(c.Request.Context(), ticketID)
	if err != nil {
		h.fail(c, err, "Failed to get ticket owner")
		return
	}

	c.JSON(http.StatusOK, models.OwnerResponse{TicketID: ticketID, Owner: owner})
}

// TicketMetadata - GET /api/tickets/:id/metadata
func (h *Handlers) TicketMetadata(c *gin.Context) {
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	ref, err := h.services.Tickets.MetadataOf(c.Request.Context(), ticketID)
	if err != nil {
		h.fail(c, err, "Failed to get ticket metadata")
		return
	}

	c.JSON(http.StatusOK, models.MetadataResponse{TicketID: ticketID, MetadataRef: ref})
}
