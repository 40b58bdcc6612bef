package handler

import (
	"net/http"
	"time"

	"taskflow/internal/workflow"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	workflows *workflow.Service
}

func NewAdminHandler(workflows *workflow.Service) *AdminHandler {
	return &AdminHandler{workflows: workflows}
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user manager admin"`
}

// ListUsers returns every registered user.
// @Summary      List users
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} handler.userResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	users, err := h.workflows.ListUsers(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]userResponse, 0, len(users))
	for i := range users {
		response = append(response, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, response)
}

// UpdateRole changes a user's role.
// @Summary      Change a user's role
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body updateRoleRequest true "New role"
// @Success      200 {object} handler.userResponse
// @Router       /api/admin/users/{id}/role [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.workflows.UpdateUserRole(c.Request.Context(), principal, id, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser removes a user account.
// @Summary      Delete a user
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} map[string]string
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workflows.DeleteUser(c.Request.Context(), principal, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// CompletedReport returns completed task counts per project.
// @Summary      Completed tasks per project
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Start of creation window (RFC 3339)"
// @Param        end query string false "End of creation window (RFC 3339)"
// @Success      200 {array} repository.CompletedCount
// @Router       /api/reports/completed-per-project [get]
func (h *AdminHandler) CompletedReport(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var start, end *time.Time
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format"})
			return
		}
		start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format"})
			return
		}
		end = &t
	}

	rows, err := h.workflows.CompletedTasksReport(c.Request.Context(), principal, start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
