package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/boundary"
	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/constant"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/log"
)

const (
	flagConfigFilePath = "config"
	flagVerbose        = "verbose"
	flagFlawDir        = "flaw-dir"
)

var flawDir string

func main() {
	logger := log.NewPretty(os.Stderr).Level(zerolog.InfoLevel)
	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:      "scplayer",
		Version:   constant.Version,
		Compiled:  constant.CompileTime,
		Suggest:   true,
		Usage:     "SoundCloud search, stream and download",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     flagConfigFilePath,
				Aliases:  []string{"c"},
				Usage:    "Config file path",
				Required: false,
			},
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:  flagVerbose,
				Usage: "Enable debug logs",
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:        flagFlawDir,
				Usage:       "Directory to dump failure diagnostics into",
				Destination: &flawDir,
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			resolveCommand(),
			streamCommand(),
			playCommand(),
			downloadCommand(),
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		status := int(boundary.StatusOf(err))
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			if flawDir != "" {
				if fileName, dumpErr := errutil.DumpFlaw(flawDir, flawErr, time.Now()); nil != dumpErr {
					logger.Error().Func(log.Flaw(dumpErr)).Msg("Failed to dump flaw")
				} else {
					logger.Info().Str("file", fileName).Msg("Flaw dumped")
				}
			}
			logger.Fatal().Func(log.Flaw(err)).Int("status", status).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Int("status", status).Msg("Application exited with error")
	}
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	cfgEnv := os.Getenv("CONFIG")
	cfgFilePath := cliCtx.String(flagConfigFilePath)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		cfg, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	case cfgEnv != "":
		logger.Debug().Msg("Loading config from environment variable")
		cfg, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return cfg, nil
	default:
		logger.Debug().Msg("Using default config")
		cfg := config.Default()
		return &cfg, nil
	}
}

type env struct {
	ctx     context.Context
	cfg     *config.Config
	session *boundary.Session
	logger  zerolog.Logger
}

// setup builds the per-command environment. The returned cancel function
// must be called when the command returns.
func setup(cliCtx *cli.Context) (*env, context.CancelFunc, error) {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)

	level := zerolog.InfoLevel
	if cliCtx.Bool(flagVerbose) {
		level = zerolog.TraceLevel
	}
	logger := log.NewPretty(os.Stderr).Level(level)

	cfg, err := loadConfig(cliCtx, logger)
	if nil != err {
		cancel()
		return nil, nil, err
	}

	session, err := boundary.NewSession(*cfg, logger)
	if nil != err {
		cancel()
		return nil, nil, err
	}

	return &env{ctx: ctx, cfg: cfg, session: session, logger: logger}, cancel, nil
}

func firstArg(cliCtx *cli.Context, name string) (string, error) {
	if cliCtx.NArg() != 1 {
		return "", fmt.Errorf("%w: expected exactly one %s argument", boundary.ErrInvalidArgument, name)
	}
	return cliCtx.Args().First(), nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
