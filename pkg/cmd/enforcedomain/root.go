// Package enforcedomain is the command-line interface of the enforcedomain proxy.
package enforcedomain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/configs"
	"go.minekube.com/enforcedomain/pkg/gate"
	"go.minekube.com/enforcedomain/pkg/util/interrupt"
	"go.minekube.com/enforcedomain/pkg/version"
)

// Execute runs App() and calls os.Exit when finished.
func Execute() {
	ctx, cancel := interrupt.TerminationContext(context.Background())
	defer cancel()
	if err := App().RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// App returns the enforcedomain cli app.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "enforcedomain"
	app.Usage = "Minecraft proxy that only admits players joining with your domain."
	app.Description = `A Minecraft Java edition front proxy that disconnects players
connecting with any other host than the configured domain, e.g. the
server's raw IP address, before forwarding them to the backend server.`
	app.Version = version.String()

	// Use -V for version, -v is verbosity
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	var (
		debug      bool
		configFile string
		verbosity  int
	)
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage: `config file (default: ./config.yml)
Supports: yaml/yml, json, toml, hcl, ini, prop/properties/props, env/dotenv`,
			EnvVars:     []string{config.EnvPrefix + "_CONFIG"},
			Destination: &configFile,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "Enable debug mode and highest log verbosity",
			Destination: &debug,
			EnvVars:     []string{config.EnvPrefix + "_DEBUG"},
		},
		&cli.IntFlag{
			Name:        "verbosity",
			Aliases:     []string{"v"},
			Usage:       "The higher the verbosity the more logs are shown",
			EnvVars:     []string{config.EnvPrefix + "_VERBOSITY"},
			Destination: &verbosity,
		},
	}
	app.Commands = []*cli.Command{
		configCommand(),
		versionCommand(),
	}
	app.Action = func(c *cli.Context) error {
		if configFile == "" {
			configFile = configs.DefaultFileName
		}
		created, err := configs.EnsureFile(configFile)
		if err != nil {
			return cli.Exit(fmt.Errorf("error creating default config: %w", err), 1)
		}

		cfg, err := config.LoadFile(configFile)
		if err != nil {
			return cli.Exit(err, 1)
		}

		// Flags overwrite config
		debug = debug || cfg.Debug
		cfg.Debug = debug
		if !c.IsSet("verbosity") && debug {
			verbosity = math.MaxInt8
		}

		log, err := newLogger(debug, verbosity)
		if err != nil {
			return cli.Exit(fmt.Errorf("error creating zap logger: %w", err), 1)
		}
		c.Context = logr.NewContext(c.Context, log)

		log.Info("logging verbosity", "verbosity", verbosity)
		if created {
			log.Info("created default config file, set your domain in it", "config", configFile)
		}
		log.Info("using config file", "config", configFile)

		if err = gate.Start(c.Context,
			gate.WithConfig(*cfg),
			gate.WithAutoConfigReload(configFile),
		); err != nil {
			return cli.Exit(fmt.Errorf("error running enforcedomain: %w", err), 1)
		}
		var sigErr *interrupt.SignalError
		if errors.As(context.Cause(c.Context), &sigErr) {
			log.Info("shut down", "reason", sigErr.Error())
		}
		return nil
	}
	return app
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(c *cli.Context) error {
			_, err := fmt.Fprintln(c.App.Writer, version.UserAgent())
			return err
		},
	}
}

func newLogger(debug bool, v int) (l logr.Logger, err error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))
	cfg.DisableStacktrace = !debug

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
