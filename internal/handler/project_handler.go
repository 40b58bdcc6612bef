package handler

import (
	"net/http"

	"taskflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	workflows *workflow.Service
}

func NewProjectHandler(workflows *workflow.Service) *ProjectHandler {
	return &ProjectHandler{workflows: workflows}
}

type createProjectRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	LeadManagerID *string  `json:"lead_manager_id" binding:"omitempty,uuid"`
	TeamMemberIDs []string `json:"team_member_ids" binding:"omitempty,dive,uuid"`
}

type updateProjectRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	LeadManagerID *string   `json:"lead_manager_id" binding:"omitempty,uuid"`
	TeamMemberIDs *[]string `json:"team_member_ids" binding:"omitempty,dive,uuid"`
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Create creates a project led by the caller (or an explicit lead for admins).
// @Summary      Create a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body createProjectRequest true "Project data"
// @Success      201 {object} workflow.ProjectWithProgress
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	input := workflow.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.LeadManagerID != nil {
		leadID, err := uuid.Parse(*req.LeadManagerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead manager ID format"})
			return
		}
		input.LeadManagerID = &leadID
	}
	memberIDs, err := parseUUIDs(req.TeamMemberIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team member ID format"})
		return
	}
	input.TeamMemberIDs = memberIDs

	project, err := h.workflows.CreateProject(c.Request.Context(), principal, input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// List returns the projects visible to the caller.
// @Summary      List projects
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} workflow.ProjectWithProgress
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	projects, err := h.workflows.ListProjects(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetByID returns a single project with its task progress.
// @Summary      Get a project
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Project ID"
// @Success      200 {object} workflow.ProjectWithProgress
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.workflows.GetProject(c.Request.Context(), principal, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Update applies a partial project update, including roster changes.
// @Summary      Update a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Project ID"
// @Param        request body updateProjectRequest true "Fields to update"
// @Success      200 {object} workflow.ProjectWithProgress
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	input := workflow.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.LeadManagerID != nil {
		leadID, err := uuid.Parse(*req.LeadManagerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead manager ID format"})
			return
		}
		input.LeadManagerID = &leadID
	}
	if req.TeamMemberIDs != nil {
		memberIDs, err := parseUUIDs(*req.TeamMemberIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team member ID format"})
			return
		}
		input.TeamMemberIDs = &memberIDs
	}

	project, err := h.workflows.UpdateProject(c.Request.Context(), principal, id, input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete removes a project and everything under it.
// @Summary      Delete a project
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Project ID"
// @Success      200 {object} map[string]string
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workflows.DeleteProject(c.Request.Context(), principal, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
