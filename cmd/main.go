package main

import (
	"log"
	"os"

	_ "paydocs-server/docs"

	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
)

// @title paydocs-server
// @version 1.0
// @description REST API магазина документов: загрузка PDF, оплата через реестр и выдача одноразового доступа к содержимому

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	app := &cli.App{
		Name:  "paydocs-server",
		Usage: "магазин документов с оплатой через реестр",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "путь к yaml конфигурации",
				Value:   "config.yaml",
				EnvVars: []string{"PAYDOCS_CONFIG"},
			},
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "запустить HTTP сервер",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "применить миграции postgres и выйти",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ошибка запуска: %v", err)
	}
}
