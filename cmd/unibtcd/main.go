package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bedrock-Technology/uniBTC/internal/config"
	httpservice "github.com/Bedrock-Technology/uniBTC/internal/interface/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "unibtcd",
		Usage:   "uniBTC delayed redemption router daemon",
		Version: Version,
		Flags:   config.Flags,
		Action:  run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}
	defer cfg.RepoManager().Close()

	appSvc, err := cfg.AppService()
	if err != nil {
		return fmt.Errorf("failed to create app service: %s", err)
	}

	svc, err := httpservice.NewService(httpservice.Config{
		Port:  cfg.Port,
		Roles: cfg.Roles(),
	}, appSvc, cfg.AdminService())
	if err != nil {
		return fmt.Errorf("failed to create service: %s", err)
	}

	log.Infof("unibtcd config: %s", cfg)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %s", err)
	}

	if watcher := cfg.Watcher(); watcher != nil {
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %s", err)
		}
		defer watcher.Stop()
	}

	log.RegisterExitHandler(svc.Stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	svc.Stop()
	return nil
}
