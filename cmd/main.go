package main

import (
	"fmt"
	"os"

	"github.com/dealhawk/dealhawk-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("Server starting", "addr", a.Cfg.ListenAddr)
	if err := a.Run(); err != nil {
		a.Log.Error("Server exited", "error", err.Error())
		a.Close()
		os.Exit(1)
	}
}
