package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/winddc/winddc/internal/config"
	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
	"github.com/winddc/winddc/internal/monitor"
	"github.com/winddc/winddc/internal/platform"
)

// app carries state shared by every subcommand.
type app struct {
	configFile string
	cfg        *config.Config
	logCloser  io.Closer

	// source builds the detection source; tests swap it for a fake.
	source func(*config.Config) monitor.Source
	reg    *monitor.Registry
}

func newApp() *app {
	return &app{
		source: func(cfg *config.Config) monitor.Source { return platform.NewDetector(cfg) },
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "winddcctl [command]",
		Short: "Control monitor brightness over DDC/CI and HDR",
		Long: `winddcctl reads and sets the brightness of attached monitors. Displays in
HDR mode are driven through their SDR white level; everything else through
DDC/CI.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is <user config dir>/winddc/config.yaml)")
	pf.String("log-level", config.DefaultLogLevel, "log level: trace, debug, info, warn, error")
	pf.String("log-file", "", "write the log to this file instead of stderr")
	pf.String("ddc-backend", config.BackendDXVA2, "DDC/CI backend: dxva2 or ddcci")
	pf.Bool("hdr", true, "probe HDR displays before falling back to DDC/CI")

	root.AddCommand(newListCmd(a), newGetCmd(a), newSetCmd(a), newVersionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var opts []config.Option
	if a.configFile != "" {
		opts = append(opts, config.WithFile(a.configFile))
	}
	loader := config.New(opts...)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	closer, err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	a.cfg, a.logCloser = cfg, closer
	return nil
}

// teardown is safe to call more than once.
func (a *app) teardown() {
	if a.reg != nil {
		a.reg.Close()
		a.reg = nil
	}
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}

// registry detects monitors once per invocation.
func (a *app) registry(ctx context.Context) (*monitor.Registry, error) {
	if a.reg != nil {
		return a.reg, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Detect.Timeout)
	defer cancel()

	reg := monitor.NewRegistry(a.source(a.cfg), monitor.WithAllowExtended(a.cfg.Brightness.AllowExtended))
	if err := reg.Refresh(ctx); err != nil {
		if errors.HasCode(err, errors.ErrNoMonitors) {
			return nil, errors.Errorf(errors.ErrNoMonitors, "winddcctl", "no monitor supports brightness control over DDC/CI or HDR")
		}
		return nil, err
	}
	a.reg = reg
	return reg, nil
}

// selected resolves the --monitor query; an empty query means all monitors.
func (a *app) selected(ctx context.Context, query string) ([]*monitor.Monitor, error) {
	reg, err := a.registry(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return reg.Monitors(), nil
	}
	m, err := reg.Find(query)
	if err != nil {
		return nil, err
	}
	return []*monitor.Monitor{m}, nil
}
