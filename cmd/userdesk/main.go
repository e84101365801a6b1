package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/userdesk/userdesk/internal/api"
	"github.com/userdesk/userdesk/internal/config"
	"github.com/userdesk/userdesk/internal/users"
)

// AppState holds everything a command needs
type AppState struct {
	Logger *zap.Logger
	Config *config.Config
	Users  users.UserManager
	Out    io.Writer
}

type globalFlags struct {
	ConfigFile string
	BaseURL    string
	Verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var flags globalFlags

	fs := flag.NewFlagSet("userdesk", flag.ContinueOnError)
	fs.StringVar(&flags.ConfigFile, "config", "", "path to a YAML config file (default $USERDESK_CONFIG_FILE or userdesk.yaml)")
	fs.StringVar(&flags.BaseURL, "base-url", "", "user API base address, overrides api.base_url")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: userdesk [flags] <list|add|update|delete> [command flags]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	if err := loadConfig(flags); err != nil {
		return err
	}

	logger := initLogger(flags.Verbose)
	defer func() { _ = logger.Sync() }()

	as, err := newAppState(logger, flags, stdout)
	if err != nil {
		return err
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
	return cmd(ctx, as, fs.Args()[1:])
}

func loadConfig(flags globalFlags) error {
	if flags.ConfigFile == "" {
		config.Load()
		return nil
	}

	if err := config.LoadFromFile(flags.ConfigFile); err != nil {
		return err
	}
	return config.ApplyEnvOverrides()
}

// newAppState builds the API client and the user store
func newAppState(logger *zap.Logger, flags globalFlags, stdout io.Writer) (*AppState, error) {
	apiConfig := config.API()
	baseURL := apiConfig.BaseURL
	if flags.BaseURL != "" {
		baseURL = flags.BaseURL
	}

	policy, err := users.ParseRefetchPolicy(config.Store().RefetchPolicy)
	if err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded",
		zap.String("base_url", baseURL),
		zap.Duration("timeout", apiConfig.Timeout),
		zap.Stringer("refetch_policy", policy))

	client, err := api.NewClient(baseURL,
		api.WithTimeout(apiConfig.Timeout),
		api.WithLogger(logger.Named("api")))
	if err != nil {
		return nil, err
	}

	store, err := users.NewStore(client,
		users.WithRefetchPolicy(policy),
		users.WithLogger(logger.Named("users")))
	if err != nil {
		return nil, err
	}

	return &AppState{
		Logger: logger,
		Config: config.Get(),
		Users:  store,
		Out:    stdout,
	}, nil
}

func initLogger(verbose bool) *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	level := logConfig.Level
	if verbose {
		level = "debug"
	}

	// Set log level
	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}
