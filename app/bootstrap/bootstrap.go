package bootstrap

import (
	"log"

	"github.com/docqa/backend-go/internal/config"
	"github.com/docqa/backend-go/internal/database"
	"github.com/docqa/backend-go/internal/di"
	"github.com/docqa/backend-go/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks []func() error
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// SetGlobalApp sets the global app instance
func SetGlobalApp(app *App) {
	globalApp = app
}

// Init bootstraps configuration, logger, database connections and the
// dependency injection container required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load dynamic configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	app := &App{}

	// Initialize database (optional). 未配置时文档登记退化为空实现。
	if config.AppConfig.Database.Enabled {
		if _, err := database.InitDB(); err != nil {
			logger.Warn("Failed to initialize database, document registry disabled", zap.Error(err))
			config.AppConfig.Database.Enabled = false
		} else {
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				return database.CloseDB()
			})
		}
	}

	// Initialize Redis (optional). Failure shouldn't block the app.
	if config.AppConfig.Redis.Enabled {
		if _, err := database.InitRedis(); err != nil {
			logger.Warn("Failed to initialize Redis, embedding cache disabled", zap.Error(err))
			config.AppConfig.Redis.Enabled = false
		} else {
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				return database.CloseRedis()
			})
		}
	}

	// 初始化依赖注入容器并注册所有提供者
	container := di.InitContainer()
	if err := di.RegisterProviders(container); err != nil {
		return nil, err
	}

	SetGlobalApp(app)
	logger.Info("Application bootstrapped",
		zap.String("env", config.AppConfig.Server.Env),
		zap.String("vector_store", config.AppConfig.VectorStore.Provider))

	return app, nil
}

// Shutdown flushes logs and closes resources gracefully.
func (a *App) Shutdown() {
	// Execute cleanup tasks in reverse order (best effort).
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			log.Printf("Cleanup error: %v\n", err)
		}
	}

	// Flush logger buffers.
	logger.Sync()
}
