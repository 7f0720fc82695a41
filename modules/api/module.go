package api

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/KhaledAOsman/empower-task/modules/registry"
	"github.com/KhaledAOsman/empower-task/modules/reporting"
	"github.com/KhaledAOsman/empower-task/modules/tasks"
)

// ModuleName is the name the API module registers under.
const ModuleName = "api"

// APIModule is the HTTP edge. It translates routes into service calls on
// the registry, tasks and reporting modules and maps fault codes onto
// HTTP statuses.
type APIModule struct {
	app  *fiber.App
	port int

	registryContainer  mono.ServiceContainer
	tasksContainer     mono.ServiceContainer
	reportingContainer mono.ServiceContainer
	registryPort       registry.RegistryPort
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates the API module listening on the given port.
func NewModule(port int) *APIModule {
	return &APIModule{port: port}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return ModuleName
}

// Dependencies declares the modules this one needs before starting.
func (m *APIModule) Dependencies() []string {
	return []string{registry.ModuleName, tasks.ModuleName, reporting.ModuleName}
}

// SetDependencyServiceContainer receives the dependency service containers.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case registry.ModuleName:
		m.registryContainer = container
		m.registryPort = registry.NewRegistryAdapter(container)
	case tasks.ModuleName:
		m.tasksContainer = container
	case reporting.ModuleName:
		m.reportingContainer = container
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.registryContainer == nil || m.tasksContainer == nil || m.reportingContainer == nil {
		return fmt.Errorf("registry, tasks and reporting dependencies not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	handlers := NewHandlers(m.registryContainer, m.tasksContainer, m.reportingContainer)

	m.app.Get("/health", m.healthHandler)

	v1 := m.app.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/refresh", handlers.Refresh)

	// Protected routes (require a resolvable Bearer token)
	protected := v1.Group("")
	protected.Use(AuthMiddleware(m.registryPort))

	protected.Get("/profile", handlers.Profile)

	protected.Post("/employees", handlers.CreateEmployee)
	protected.Get("/employees", handlers.ListEmployees)
	protected.Patch("/employees/:id", handlers.UpdateEmployee)
	protected.Get("/employees/:id/metrics", handlers.EmployeeMetrics)

	protected.Post("/tasks", handlers.CreateTask)
	protected.Get("/tasks", handlers.ListTasks)
	protected.Get("/tasks/:id", handlers.GetTask)
	protected.Patch("/tasks/:id", handlers.UpdateTask)
	protected.Patch("/tasks/:id/status", handlers.UpdateTaskStatus)
	protected.Get("/tasks/:id/history", handlers.TaskHistory)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": ModuleName,
			"port":   m.port,
		},
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
