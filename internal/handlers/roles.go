package handlers

import (
	"net/http"

	"gatepass/internal/models"

	"github.com/gin-gonic/gin"
)

// GrantOrganizer - POST /api/roles/organizer
func (h *Handlers) GrantOrganizer(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Roles.GrantOrganizer(c.Request.Context(), account, req.Account); err != nil {
		h.fail(c, err, "Failed to grant organizer role")
		return
	}

	c.Status(http.StatusOK)
}

// RevokeOrganizer - DELETE /api/roles/organizer
func (h *Handlers) RevokeOrganizer(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Roles.RevokeOrganizer(c.Request.Context(), account, req.Account); err != nil {
		h.fail(c, err, "Failed to revoke organizer role")
		return
	}

	c.Status(http.StatusOK)
}

// HasRole - GET /api/roles?role=organizer&account=acc-1
func (h *Handlers) HasRole(c *gin.Context) {
	role := models.Role(c.Query("role"))
	account := models.AccountID(c.Query("account"))

	if role == "" || account.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role and account are required"})
		return
	}

	granted := h.services.Roles.HasRole(role, account)
	c.JSON(http.StatusOK, models.RoleResponse{Account: account, Role: role, Granted: granted})
}
