package main

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/wahegurunursing/classes-api/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatalw("Server exited with error", "error", err)
	}
}
