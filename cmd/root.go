package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powermix/app"
	"github.com/kilianp07/powermix/config"
	coremon "github.com/kilianp07/powermix/core/monitoring"
	"github.com/kilianp07/powermix/infra/logger"
	"github.com/kilianp07/powermix/infra/monitoring"
)

type rootOptions struct {
	cfgPath  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "powermix",
		Short:         "Factory power grid simulator and equipment optimizer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "minimum log level, overrides logging.level")

	root.AddCommand(newRunCmd(opts), newOptimizeCmd(opts), newCatalogCmd(opts))
	return root
}

// Execute runs the CLI. Command failures are reported to the monitor.
func Execute() error {
	cmd, err := newRootCmd().ExecuteC()
	if err != nil {
		name := "powermix"
		if cmd != nil {
			name = cmd.Name()
		}
		coremon.CaptureException(err, map[string]string{"command": name})
		coremon.Flush(2 * time.Second)
		logger.New("main").Errorf("%s: %v", name, err)
	}
	return err
}

// loadConfig reads the configuration, applies the global flags and installs
// the error monitor.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, err
		}
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	return cfg, nil
}

// newService validates the adjusted configuration and builds the service.
func newService(cfg *config.Config) (*app.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
