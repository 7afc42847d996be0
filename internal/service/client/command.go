package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/oshokin/aevum/internal/audio"
	"github.com/oshokin/aevum/internal/bridge"
	"github.com/oshokin/aevum/internal/config"
	"github.com/oshokin/aevum/internal/logger"
	"github.com/oshokin/aevum/internal/service/common"
	"github.com/oshokin/aevum/internal/ui"
)

// Options configures the alarm clock client.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// LogFile overrides the log file from config when specified.
	LogFile string
	// LogLevel overrides the log level from config when specified.
	LogLevel string
}

// Run loads the settings, connects to the alarm store and shows the window
// until the user quits, ctx is cancelled or the alarm store stream ends.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.ServerAddress != "" {
		settings.ServerAddress = opts.ServerAddress
	}

	if opts.LogFile != "" {
		settings.LogFile = opts.LogFile
	}

	level, err := logger.ResolveLevel(opts.LogLevel, settings.LogLevel)
	if err != nil {
		return err
	}

	logger.SetLevel(level)

	logFile, err := resolveLogFile(settings.LogFile)
	if err != nil {
		return err
	}

	// The terminal belongs to the window, so logs go to a file.
	fileLogger, closeLog, err := logger.NewFile(logFile, logger.AtomicLevel())
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	defer func() {
		_ = closeLog()
	}()

	ctx = logger.WithName(logger.ToContext(ctx, fileLogger), "aevum")

	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, settings.ServerAddress,
		common.WithCallTimeout(settings.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialise terminal: %w", err)
	}

	defer screen.Fini()

	controller := audio.NewController(audio.Options{Settings: settings.Audio})

	logger.InfoKV(ctx, "Starting alarm clock", "server_address", settings.ServerAddress, "actor", actor.String())

	return run(ctx, settings, dependencies{
		screen: screen,
		store:  client,
		subscribe: func(ctx context.Context) (bridge.Subscriber, error) {
			subscriber, err := client.Subscribe(ctx)
			if err != nil {
				return nil, err
			}

			return subscriber, nil
		},
		player:     playerOf(controller),
		configPath: opts.ConfigPath,
		logLevel:   opts.LogLevel,
	})
}

// playerOf adapts the audio controller to the window's Player.
func playerOf(controller *audio.Controller) ui.Player {
	return ui.PlayerFunc(func(ctx context.Context) (ui.Sound, error) {
		sound, err := controller.Play(ctx)
		if err != nil {
			return nil, err //nolint:wrapcheck // Already wrapped by the controller.
		}

		return sound, nil
	})
}

// resolveLogFile returns the configured log file or one in the user's state directory.
func resolveLogFile(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "aevum", "aevum.log"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate log directory: %w", err)
	}

	return filepath.Join(home, ".local", "state", "aevum", "aevum.log"), nil
}
