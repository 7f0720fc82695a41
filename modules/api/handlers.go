package api

import (
	"encoding/json"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/modules/registry"
	"github.com/KhaledAOsman/empower-task/modules/reporting"
	"github.com/KhaledAOsman/empower-task/modules/tasks"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	registryContainer  mono.ServiceContainer
	tasksContainer     mono.ServiceContainer
	reportingContainer mono.ServiceContainer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registryContainer, tasksContainer, reportingContainer mono.ServiceContainer) *Handlers {
	return &Handlers{
		registryContainer:  registryContainer,
		tasksContainer:     tasksContainer,
		reportingContainer: reportingContainer,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation",
			Message: "Username and password are required",
		})
	}

	call := registry.LoginRequest{Username: req.Username, Password: req.Password}
	var resp registry.TokenPairResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.registryContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&call,
		&resp,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation",
			Message: "Refresh token is required",
		})
	}

	call := registry.RefreshRequest{RefreshToken: req.RefreshToken}
	var resp registry.TokenPairResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.registryContainer,
		"refresh",
		json.Marshal,
		json.Unmarshal,
		&call,
		&resp,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// Profile handles GET /api/v1/profile. It serves the caller's own profile,
// re-read through the registry so the view is as fresh as the middleware's
// resolution.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	call := registry.GetProfileRequest{ProfileID: actor.ID}
	var view registry.ProfileView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.registryContainer,
		"get-profile",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(view)
}

// CreateEmployee handles POST /api/v1/employees.
func (h *Handlers) CreateEmployee(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	call := registry.CreateEmployeeRequest{
		Actor:    actor,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Title:    req.Title,
		Position: req.Position,
		Details:  req.Details,
	}
	var view registry.ProfileView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.registryContainer,
		"create-employee",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListEmployees handles GET /api/v1/employees.
func (h *Handlers) ListEmployees(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	call := registry.ListEmployeesRequest{Actor: actor}
	var resp registry.ListEmployeesResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.registryContainer,
		"list-employees",
		json.Marshal,
		json.Unmarshal,
		&call,
		&resp,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// UpdateEmployee handles PATCH /api/v1/employees/:id.
func (h *Handlers) UpdateEmployee(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	call := registry.UpdateProfileRequest{
		Actor:     actor,
		ProfileID: c.Params("id"),
		FullName:  req.FullName,
		Title:     req.Title,
		Position:  req.Position,
		Details:   req.Details,
		Role:      req.Role,
		Active:    req.Active,
	}
	var view registry.ProfileView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.registryContainer,
		"update-profile",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(view)
}

// EmployeeMetrics handles GET /api/v1/employees/:id/metrics.
func (h *Handlers) EmployeeMetrics(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	call := reporting.EmployeeMetricsRequest{Actor: actor, EmployeeID: c.Params("id")}
	var resp reporting.EmployeeMetricsResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.reportingContainer,
		"employee-metrics",
		json.Marshal,
		json.Unmarshal,
		&call,
		&resp,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	call := tasks.CreateTaskRequest{
		Actor:        actor,
		Title:        req.Title,
		Description:  req.Description,
		AssigneeID:   req.AssigneeID,
		StartDate:    req.StartDate,
		DeadlineDate: req.DeadlineDate,
	}
	var view tasks.TaskView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"create",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListTasks handles GET /api/v1/tasks. Managers may filter by assignee;
// employees always receive their own tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	call := tasks.ListTasksRequest{Actor: actor, AssigneeID: c.Query("assignee_id", "")}
	var resp tasks.ListTasksResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"list",
		json.Marshal,
		json.Unmarshal,
		&call,
		&resp,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// GetTask handles GET /api/v1/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	call := tasks.GetTaskRequest{Actor: actor, TaskID: c.Params("id")}
	var view tasks.TaskView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"get",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(view)
}

// UpdateTask handles PATCH /api/v1/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	call := tasks.UpdateTaskRequest{
		Actor:        actor,
		TaskID:       c.Params("id"),
		Title:        req.Title,
		Description:  req.Description,
		AssigneeID:   req.AssigneeID,
		StartDate:    req.StartDate,
		DeadlineDate: req.DeadlineDate,
	}
	var view tasks.TaskView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"update",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(view)
}

// UpdateTaskStatus handles PATCH /api/v1/tasks/:id/status.
func (h *Handlers) UpdateTaskStatus(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	call := tasks.UpdateStatusRequest{Actor: actor, TaskID: c.Params("id"), Status: req.Status}
	var view tasks.TaskView
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"update-status",
		json.Marshal,
		json.Unmarshal,
		&call,
		&view,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(view)
}

// TaskHistory handles GET /api/v1/tasks/:id/history.
func (h *Handlers) TaskHistory(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticated(c)
	}

	call := tasks.HistoryRequest{Actor: actor, TaskID: c.Params("id")}
	var resp tasks.HistoryResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"history",
		json.Marshal,
		json.Unmarshal,
		&call,
		&resp,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// statusByCode maps the fault taxonomy to HTTP statuses.
var statusByCode = map[fault.Code]int{
	fault.CodeAuthentication: fiber.StatusUnauthorized,
	fault.CodeAuthorization:  fiber.StatusForbidden,
	fault.CodeValidation:     fiber.StatusBadRequest,
	fault.CodeNotFound:       fiber.StatusNotFound,
	fault.CodeConflict:       fiber.StatusConflict,
}

// writeError renders a service error. Taxonomy faults keep their code and
// caller-safe message even after the service container flattened them to
// strings; anything else is logged and masked as a 500.
func writeError(c *fiber.Ctx, err error) error {
	code := fault.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return c.Status(status).JSON(ErrorResponse{
			Error:   string(code),
			Message: fault.MessageOf(err),
		})
	}

	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal",
		Message: "An internal error occurred",
	})
}

// unauthenticated is the response for requests that reach a protected
// handler without an actor snapshot.
func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "authentication",
		Message: "User not authenticated",
	})
}

// invalidBody is the response for unparseable request bodies.
func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation",
		Message: "Invalid request body",
	})
}
