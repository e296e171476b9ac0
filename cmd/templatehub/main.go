package main

import (
	"context"
	"os"

	"github.com/templatehub/backend/internal/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
