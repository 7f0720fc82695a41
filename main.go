package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	apimod "github.com/KhaledAOsman/empower-task/modules/api"
	cachemod "github.com/KhaledAOsman/empower-task/modules/cache"
	registrymod "github.com/KhaledAOsman/empower-task/modules/registry"
	reportingmod "github.com/KhaledAOsman/empower-task/modules/reporting"
	tasksmod "github.com/KhaledAOsman/empower-task/modules/tasks"
	"github.com/KhaledAOsman/empower-task/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	dbPath := getEnv("DB_PATH", "./empower.db")
	httpPort := getEnvInt("HTTP_PORT", 3000)
	redisAddr := getEnv("REDIS_ADDR", "")
	cacheTTL := getEnvDuration("CACHE_TTL", 60*time.Second)

	registryCfg := registrymod.DefaultConfig()
	registryCfg.JWT.SecretKey = getEnv("JWT_SECRET_KEY", registryCfg.JWT.SecretKey)
	registryCfg.JWT.Issuer = getEnv("JWT_ISSUER", registryCfg.JWT.Issuer)
	registryCfg.Bootstrap.Username = getEnv("BOOTSTRAP_USERNAME", registryCfg.Bootstrap.Username)
	registryCfg.Bootstrap.Password = getEnv("BOOTSTRAP_PASSWORD", registryCfg.Bootstrap.Password)
	registryCfg.Bootstrap.FullName = getEnv("BOOTSTRAP_FULL_NAME", registryCfg.Bootstrap.FullName)

	log.Println("=== Empower Task ===")
	log.Printf("Database: %s", dbPath)
	log.Printf("HTTP Port: %d", httpPort)
	if redisAddr != "" {
		log.Printf("Redis: %s (TTL: %s)", redisAddr, cacheTTL)
	} else {
		log.Println("Redis: disabled, metrics are computed on every request")
	}

	// Open the shared database; every module works on the same handle so
	// foreign keys and transactions span all three tables.
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Create modules
	registryModule := registrymod.NewModule(st, registryCfg)
	tasksModule := tasksmod.NewModule(st)
	reportingModule := reportingmod.NewModule()
	apiModule := apimod.NewModule(httpPort)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Register modules
	// Order: independent modules first, then dependent modules
	app.Register(registryModule)
	app.Register(tasksModule)
	app.Register(reportingModule)
	app.Register(apiModule)

	// The cache is optional: without Redis the reporting module just
	// computes metrics on every request.
	if redisAddr != "" {
		cacheCfg := cachemod.DefaultConfig()
		cacheCfg.RedisAddr = redisAddr
		cacheCfg.TTL = cacheTTL
		cacheModule := cachemod.NewModule(cacheCfg)
		app.Register(cacheModule)
		reportingModule.SetCache(cacheModule.GetCache())
	}

	// Start modules (this handles Init and Start)
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(httpPort)

	// Setup graceful shutdown using gelmium/graceful-shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				return st.Close()
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/auth/login            - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh          - Refresh access token")
	log.Println("  GET    /health                       - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/profile               - Current profile")
	log.Println("  POST   /api/v1/employees             - Onboard employee (manager)")
	log.Println("  GET    /api/v1/employees             - Employee roster (manager)")
	log.Println("  PATCH  /api/v1/employees/:id         - Edit profile (manager)")
	log.Println("  GET    /api/v1/employees/:id/metrics - Performance metrics")
	log.Println("  POST   /api/v1/tasks                 - Assign task (manager)")
	log.Println("  GET    /api/v1/tasks                 - List tasks")
	log.Println("  GET    /api/v1/tasks/:id             - Task details")
	log.Println("  PATCH  /api/v1/tasks/:id             - Edit task (manager)")
	log.Println("  PATCH  /api/v1/tasks/:id/status      - Move task status")
	log.Println("  GET    /api/v1/tasks/:id/history     - Status audit trail")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
