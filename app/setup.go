package app

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wahegurunursing/classes-api/api"
	"github.com/wahegurunursing/classes-api/config"
	"github.com/wahegurunursing/classes-api/database"
	"github.com/wahegurunursing/classes-api/router"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		log.Warnw("No .env file loaded, using system environment", "error", err)
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))
	app := server.GetEngine()

	// Setup middleware, services and routes
	deps, err := router.SetupRoutes(app, store, env)
	if err != nil {
		return err
	}

	// Cron jobs (default to enabled)
	if os.Getenv("CRON_ENABLED") != "false" {
		if err := deps.CronManager.Start(); err != nil {
			log.Warnw("Failed to start cron jobs", "error", err)
		}
	}

	defer func() {
		deps.CronManager.Stop()
		if deps.RedisCache != nil {
			deps.RedisCache.Close()
		}
		store.Close()
	}()

	return server.Run()
}
