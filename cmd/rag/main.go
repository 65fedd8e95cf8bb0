package main

import (
	"log"
	"os"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"github.com/insurhub/backend-go/app/bootstrap"
	"github.com/insurhub/backend-go/app/router"
	"github.com/insurhub/backend-go/internal/logger"
	"go.uber.org/zap"
)

func main() {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8000"
	}
	if p, err := strconv.Atoi(port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	} else {
		web.BConfig.Listen.HTTPPort = 8000
	}

	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	router.Init()

	web.BConfig.AppName = "Policy QA Service"
	web.BConfig.CopyRequestBody = true
	web.BConfig.MaxMemory = 1 << 26

	logger.Info("🚀 Starting Policy QA Service", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
