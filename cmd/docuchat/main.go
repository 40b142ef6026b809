package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/docuchat/backend-go/app/bootstrap"
	"github.com/docuchat/backend-go/internal/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	web.BConfig.AppName = "DocuChat"
	web.BConfig.CopyRequestBody = true
	if port, err := strconv.Atoi(app.Config.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = port
	}

	logger.Info("🚀 Starting DocuChat service", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
