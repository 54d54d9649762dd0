package main

import (
	"github.com/lumosocial/pulse/config"
	"github.com/lumosocial/pulse/engine"
	"github.com/lumosocial/pulse/models"
	"github.com/lumosocial/pulse/routes"
	"github.com/lumosocial/pulse/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// Auto-migrate the tables owned by the engagement engine
	db := config.InitDatabase(&models.User{}, &models.Streak{}, &models.DailyEngagement{}, &models.RewardLog{}, &models.UserAchievement{})

	eng, err := engine.New(db, utils.GetRedis(), engine.SystemClock(), engine.NewDBStatsProvider(db), utils.Sugar)
	if err != nil {
		utils.Sugar.Fatalf("engine init failed: %v", err)
	}

	r := routes.SetupRouter(db, eng)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
