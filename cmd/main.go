package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/klarkent2022/smart-irrigation/internal/bootstrap"
	"github.com/klarkent2022/smart-irrigation/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	appCtx, cleanup, err := bootstrap.Init(context.Background(), configPath)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	cfg := appCtx.Config
	sugar := appCtx.Sugar

	app := server.New(cfg, appCtx.Deps)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	cleanup(ctxShut)
	log.Println("Graceful shutdown complete")
}
