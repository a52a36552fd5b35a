package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/config"
	"github.com/syscoin/sysasset/internal/core/application"
	"github.com/urfave/cli/v2"
)

var (
	Version string

	cfg *config.Config
	svc application.Service
)

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "sysasset"
	app.Usage = "build, broadcast and verify Syscoin asset allocation transactions"
	app.Commands = append(
		app.Commands,
		&configCommand,
		&selectCommand,
		&sendCommand,
		&mintCommand,
		&burnToNEVMCommand,
		&wrapCommand,
		&unwrapCommand,
		&broadcastCommand,
		&verifyCommand,
		&historyCommand,
	)
	app.Flags = config.Flags
	app.Before = func(ctx *cli.Context) error {
		c, err := config.LoadConfig(ctx)
		if err != nil {
			return fmt.Errorf("invalid config: %s", err)
		}
		log.SetLevel(log.Level(c.LogLevel))

		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %s", err)
		}
		cfg = c

		s, err := cfg.AppService()
		if err != nil {
			return fmt.Errorf("error initializing app service: %s", err)
		}
		svc = s
		return nil
	}
	app.After = func(*cli.Context) error {
		if cfg != nil {
			cfg.Close()
		}
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}
