package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/k0kubun/pp/v3"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

// loadConfig reads the dotenv file named by --env-file, when present, and
// then the process environment. Variables already set win over the file.
func loadConfig(c *cli.Context) (*types.Config, error) {
	if file := c.String("env-file"); file != "" {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	config := new(types.Config)
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if config.ServerPort == 0 {
		config.ServerPort = 8080
	}

	if config.ReadTimeoutSec == 0 {
		config.ReadTimeoutSec = 10
	}

	if config.WriteTimeoutSec == 0 {
		config.WriteTimeoutSec = 60
	}

	return config, nil
}

func requireDatabase(config *types.Config) error {
	if config.DatabaseURL == "" {
		return fmt.Errorf("set DATABASE_URL")
	}
	return nil
}

func newLogger(config *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logger.WithField("level", config.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func displayLocation(config *types.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(config.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("load display timezone %q: %w", config.DisplayTimezone, err)
	}
	return loc, nil
}

func redacted(config types.Config) types.Config {
	for _, secret := range []*string{
		&config.DatabaseURL,
		&config.S3SecretKey,
		&config.SupabaseKey,
		&config.JWTSecret,
		&config.CookieHashKey,
		&config.CookieBlockKey,
		&config.SMTPPass,
	} {
		if *secret != "" {
			*secret = "********"
		}
	}
	return config
}

var configCommand = &cli.Command{
	Name:  "config",
	Usage: "Print the resolved configuration with secrets masked",
	Action: func(c *cli.Context) error {
		config, err := loadConfig(c)
		if err != nil {
			return err
		}

		_, err = pp.Println(redacted(*config))
		return err
	},
}
