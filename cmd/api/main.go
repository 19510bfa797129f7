package main

import (
	"log/slog"
	"os"

	"github.com/metinatakli/cinema-storefront/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}
