// Command ledgerctl inspects and settles group ledgers straight from the
// database, without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"gorm.io/gorm"

	"splitease/internal/cli"
	"splitease/internal/config"
	"splitease/internal/database"
	"splitease/internal/logger"
)

var envFile = flag.String("env-file", ".env", "env file to load configuration from")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	var manager *database.Manager
	app := &cli.App{
		Open: func() (*gorm.DB, error) {
			m, err := openDatabase(*envFile)
			if err != nil {
				return nil, err
			}
			manager = m
			return m.DB(), nil
		},
		Out: os.Stdout,
		Err: os.Stderr,
	}
	cli.Register(commander, app)

	flag.Parse()
	logger.Init(os.Getenv("ENV"))

	status := commander.Execute(context.Background())
	if manager != nil {
		_ = manager.Close()
	}
	logger.Sync()
	os.Exit(int(status))
}

func openDatabase(envFile string) (*database.Manager, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return nil, err
	}
	m, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, err
	}
	if err := m.Migrate(); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}
