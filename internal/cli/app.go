package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/taskgate/internal/cmdguard"
	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/denylist"
	"github.com/ppiankov/taskgate/internal/dispatch"
	"github.com/ppiankov/taskgate/internal/logging"
	"github.com/ppiankov/taskgate/internal/ops"
	"github.com/ppiankov/taskgate/internal/reader"
)

// app is the wired process: config, logger, dispatcher, and reader.
type app struct {
	cfg     *config.Config
	cfgPath string
	cfgHash string
	log     *logging.Logger
	d       *dispatch.Dispatcher
	ops     *ops.Registry
	runner  *cmdguard.Guard
	reader  *reader.Reader
}

// configPath resolves --config, then $TASKGATE_CONFIG. Empty selects the
// default location.
func configPath() string {
	if rootConfig != "" {
		return rootConfig
	}
	return os.Getenv(config.EnvConfigPath)
}

func loadConfig() (*config.Config, string, string, error) {
	path := configPath()
	cfg, hash, err := config.LoadWithHash(path)
	if err != nil {
		return nil, "", "", err
	}
	cfg.ApplyEnv()
	if rootDataRoot != "" {
		cfg.DataRoot = rootDataRoot
	}
	if rootLogLevel != "" {
		cfg.Logging.Level = rootLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, hash, nil
}

func newApp() (*app, error) {
	cfg, path, hash, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}

	dl, err := denylist.Load(cfg.Guard.DenylistPath)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to load denylist: %w", err)
	}
	runner := cmdguard.NewGuard(cmdguard.Config{
		Timeout:  cfg.ExecTimeout,
		Denylist: dl,
	})

	reg, err := ops.Builtin(cfg, runner)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	cl, guard, err := dispatch.Components(cfg, cfg.Root())
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	d, err := dispatch.New(cl, guard, reg, logger.Logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		cfgPath: path,
		cfgHash: hash,
		log:     logger,
		d:       d,
		ops:     reg,
		runner:  runner,
		reader:  reader.New(cfg.Root(), cfg.Read.Unrestricted),
	}, nil
}

func (a *app) Close() error {
	return a.log.Close()
}
