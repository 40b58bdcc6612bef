package handler

import (
	"net/http"
	"time"

	"taskflow/internal/repository"
	"taskflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	workflows *workflow.Service
}

func NewTaskHandler(workflows *workflow.Service) *TaskHandler {
	return &TaskHandler{workflows: workflows}
}

type createTaskRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	AssigneeID   *string    `json:"assignee_id" binding:"omitempty,uuid"`
	Dependencies []string   `json:"dependencies" binding:"omitempty,dive,uuid"`
}

type updateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	AssigneeID   *string    `json:"assignee_id"`
	Unassign     bool       `json:"unassign"`
	Dependencies *[]string  `json:"dependencies" binding:"omitempty,dive,uuid"`
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create creates a task inside a project.
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Project ID"
// @Param        request body createTaskRequest true "Task data"
// @Success      201 {object} model.Task
// @Router       /api/projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	input := workflow.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if req.AssigneeID != nil {
		assigneeID, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		input.AssigneeID = &assigneeID
	}
	deps, err := parseUUIDs(req.Dependencies)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dependency ID format"})
		return
	}
	input.Dependencies = deps

	task, err := h.workflows.CreateTask(c.Request.Context(), principal, projectID, input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListByProject returns a project's tasks, filtered and sorted.
// @Summary      List project tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Project ID"
// @Param        status query string false "Filter by status"
// @Param        priority query string false "Filter by priority"
// @Param        assignee query string false "Filter by assignee ID"
// @Param        due query string false "Filter by due date (RFC 3339)"
// @Param        sort query string false "Sort key"
// @Param        order query string false "asc or desc"
// @Success      200 {array} model.Task
// @Router       /api/projects/{id}/tasks [get]
func (h *TaskHandler) ListByProject(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		SortBy:   c.Query("sort"),
		SortDesc: c.Query("order") == "desc",
	}
	if raw := c.Query("assignee"); raw != "" {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		filter.AssigneeID = &assigneeID
	}
	if raw := c.Query("due"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date format"})
			return
		}
		filter.DueOn = &due
	}

	tasks, err := h.workflows.ListProjectTasks(c.Request.Context(), principal, projectID, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetByID returns a task with its dependencies and comments.
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} model.Task
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.workflows.GetTask(c.Request.Context(), principal, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Update applies a partial task update.
// @Summary      Update a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body updateTaskRequest true "Fields to update"
// @Success      200 {object} model.Task
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	input := workflow.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Unassign:    req.Unassign,
	}
	if req.AssigneeID != nil {
		assigneeID, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		input.AssigneeID = &assigneeID
	}
	if req.Dependencies != nil {
		deps, err := parseUUIDs(*req.Dependencies)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dependency ID format"})
			return
		}
		input.Dependencies = &deps
	}

	task, err := h.workflows.UpdateTask(c.Request.Context(), principal, id, input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete removes a task.
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} map[string]string
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workflows.DeleteTask(c.Request.Context(), principal, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AddComment posts a comment on a task.
// @Summary      Add a comment
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body addCommentRequest true "Comment text"
// @Success      201 {object} model.Comment
// @Router       /api/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	comment, err := h.workflows.AddComment(c.Request.Context(), principal, taskID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment from a task.
// @Summary      Delete a comment
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        commentId path string true "Comment ID"
// @Success      200 {object} map[string]string
// @Router       /api/tasks/{id}/comments/{commentId} [delete]
func (h *TaskHandler) DeleteComment(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.workflows.DeleteComment(c.Request.Context(), principal, taskID, commentID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
