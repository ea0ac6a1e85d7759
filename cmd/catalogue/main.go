package main

import (
	"errors"
	"io/fs"
	stdLog "log"
	"time"

	"github.com/Astemirdum/catalogue-service/catalogue/app"
	"github.com/Astemirdum/catalogue-service/catalogue/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// @title                       Catalogue API
// @version                     1.0
// @description                 Books with cover images and their reviews.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", err)
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
