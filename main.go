package main

import (
	"github.com/Olga07122007/yatube-project/cache"
	"github.com/Olga07122007/yatube-project/config"
	"github.com/Olga07122007/yatube-project/models"
	"github.com/Olga07122007/yatube-project/routes"
	"github.com/Olga07122007/yatube-project/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)

	// Index pages are cached in Redis so every process serves the same
	// rendered output.
	store := cache.NewRedis(utils.GetRedis(), cfg.CacheKeyPrefix)

	r := routes.SetupRouter(db, store)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
