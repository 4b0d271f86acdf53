package main

import (
	"context"
	"time"

	"github.com/cppla/planner/config"
	"github.com/cppla/planner/middleware"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/routes"
	"github.com/cppla/planner/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)
	r := routes.SetupRouter(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	utils.StartJanitor(ctx, 5*time.Minute, utils.SweepMemoryStores, middleware.SweepLimiters)

	utils.Sugar.Infow("starting planner storage service",
		"host", utils.Hostname(), "port", cfg.AppPort, "db_driver", cfg.DBDriver, "redis", utils.GetRedis() != nil)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
