// cmd/sikconfig/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"sik-config/internal/config"
	"sik-config/internal/discovery"
	serialscanner "sik-config/internal/discovery/serial"
	"sik-config/internal/model"
	"sik-config/internal/service"
	"sik-config/internal/utils"
)

// Application represents one invocation of the tool
type Application struct {
	config         *config.Config
	logger         *zap.Logger
	stdout         io.Writer
	radioService   *service.RadioService
	scannerManager *discovery.ScannerManager
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(int(code))
}

// run parses args, executes the selected mode and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) model.ExitCode {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return model.ExitOK
		}
		return model.ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return model.ExitUsage
	}

	if version, _ := fs.GetBool("version"); version {
		fmt.Fprintln(stdout, config.Version)
		return model.ExitOK
	}

	app, err := NewApplication(fs, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize application: %v\n", err)
		if errors.Is(err, config.ErrConflictingFlags) {
			return model.ExitUsage
		}
		return model.ExitFailure
	}
	defer utils.CloseLogger(app.logger)

	if listPorts, _ := fs.GetBool("list-ports"); listPorts {
		return model.ExitCodeOf(app.ListPorts(ctx))
	}

	return model.ExitCodeOf(app.Run(ctx, operationFor(fs)))
}

// NewApplication loads the configuration and wires the services
func NewApplication(fs *pflag.FlagSet, stdout io.Writer) (*Application, error) {
	configFile, _ := fs.GetString("config")

	cfg, err := config.Load(configFile, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, cfg.App.Name)
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	scannerManager := discovery.NewScannerManager(logger)
	scannerManager.RegisterScanner(serialscanner.NewScanner(logger, nil))

	return &Application{
		config:         cfg,
		logger:         logger,
		stdout:         stdout,
		radioService:   service.NewRadioService(cfg, service.Dependencies{}, logger),
		scannerManager: scannerManager,
	}, nil
}

// Run performs one radio operation and prints its output
func (app *Application) Run(ctx context.Context, op model.OperationType) error {
	result, err := app.radioService.Run(ctx, app.config.RunRequest(op))
	if err != nil {
		var radioErr *model.RadioError
		if errors.As(err, &radioErr) && radioErr.Response != "" {
			app.logger.Error("Radio rejected command",
				zap.String("parameter", string(radioErr.Parameter)),
				zap.String("response", radioErr.Response),
			)
		}
		if result != nil && len(result.Applied) > 0 {
			app.logger.Warn("Settings applied before the failure were not saved",
				zap.Any("applied", result.Applied),
			)
		}
		if !app.config.IsDebugEnabled() {
			app.logger.Info("Run again with --verbose to log the radio transcript")
		}
		return err
	}

	switch op {
	case model.OperationTypeProbeBaud:
		fmt.Fprintln(app.stdout, result.BaudRate)
	case model.OperationTypeShowParameters:
		fmt.Fprintln(app.stdout, result.Parameters)
	default:
		if result.PersistWarning {
			app.logger.Warn("Radio did not confirm saving the settings; they may be lost on reboot")
		}
	}
	return nil
}

// ListPorts prints candidate radio ports, most likely first
func (app *Application) ListPorts(ctx context.Context) error {
	ports, err := app.scannerManager.ScanAll(ctx)
	if err != nil {
		return err
	}

	for _, port := range ports {
		fmt.Fprintln(app.stdout, port.String())
	}
	return nil
}
