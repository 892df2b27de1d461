package main

import (
	"context"
	"fmt"
	"log"

	"github.com/m3rciful/lecturebot/core/bootstrap"
	"github.com/m3rciful/lecturebot/core/cmd"
	"github.com/m3rciful/lecturebot/internal/app"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg, ok := carrier.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   &cfg.Config,
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			a, err := app.New(cfg, res.DB)
			if err != nil {
				_ = res.Close()
				return nil, err
			}
			if err := bootstrap.RunSeeders(context.Background(), a.Seeders()...); err != nil {
				_ = res.Close()
				return nil, err
			}
			return a, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
