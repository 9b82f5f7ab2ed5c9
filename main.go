package main

import (
	"flag"
	"log"

	"epic_quiz_client/internal/app"
	"epic_quiz_client/internal/config"
	"epic_quiz_client/pkg/configwatcher"
	"epic_quiz_client/pkg/logger"
)

func main() {
	// 命令行参数
	refresh := flag.Bool("refresh", false, "启动时强制刷新离线内容缓存")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ForceRefresh = *refresh

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		application.ApplyConfig(newCfg)
	})

	application.Run()
}
