package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"github.com/docqa/backend-go/app/bootstrap"
	"github.com/docqa/backend-go/app/router"
	"github.com/docqa/backend-go/internal/config"
	"github.com/docqa/backend-go/internal/logger"
	"go.uber.org/zap"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	router.Init()

	web.BConfig.AppName = "Document QA Service"
	web.BConfig.CopyRequestBody = true
	if p, err := strconv.Atoi(config.AppConfig.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	}

	logger.Info("Starting Document QA Service", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
