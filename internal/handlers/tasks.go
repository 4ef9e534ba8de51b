package handlers

import (
	"net/http"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasks handles GET /tasks (public)
func (h *TaskHandler) GetTasks(c *gin.Context) {
	listAll(c, taskFields, func(c *gin.Context, aq *AdvancedQuery) (*services.ListResult[models.Task], error) {
		return h.taskService.List(c.Request.Context(), aq.Query)
	})
}

// GetProfileTasks handles GET /profiles/:id/tasks (public)
func (h *TaskHandler) GetProfileTasks(c *gin.Context) {
	profileID, err := parseID(c, "id", "profile")
	if err != nil {
		fail(c, err)
		return
	}

	tasks, err := h.taskService.ListByProfile(c.Request.Context(), profileID)
	if err != nil {
		fail(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	respondList(c, tasks, len(tasks))
}

// GetTask handles GET /tasks/:id (public). The profile is expanded to
// its id, name and description.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := parseID(c, "id", "task")
	if err != nil {
		fail(c, err)
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// CreateTask handles POST /profiles/:id/tasks (profile owner or Admin)
func (h *TaskHandler) CreateTask(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	profileID, err := parseID(c, "id", "profile")
	if err != nil {
		fail(c, err)
		return
	}

	var in services.TaskInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), r, profileID, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseID(c, "id", "task")
	if err != nil {
		fail(c, err)
		return
	}

	var in services.TaskInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), r, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseID(c, "id", "task")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), r, id); err != nil {
		fail(c, err)
		return
	}
	respondDeleted(c)
}
