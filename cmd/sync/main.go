package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/lomedigitalschool/kotiz-web/internal/common"
	"github.com/lomedigitalschool/kotiz-web/internal/config"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "Clear all durable storage and in-memory state instead of syncing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *reset {
		services.Store.Reset(ctx)
		fmt.Println("Store reset: all slots cleared.")
		return
	}

	services.Store.FetchAllCagnottes(ctx)

	state := services.Store.Snapshot()
	if state.LastError != "" {
		fmt.Printf("Sync failed (%s); %d cagnottes served from cache.\n",
			state.LastError, len(state.Cagnottes))
		return
	}
	fmt.Printf("Sync complete: %d cagnottes.\n", len(state.Cagnottes))
}
