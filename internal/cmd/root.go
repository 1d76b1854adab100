package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-relay/pkg/logger"
	"github.com/huynhanx03/go-relay/pkg/participant"
	"github.com/huynhanx03/go-relay/pkg/settings"
)

// app is the state shared by the subcommands.
type app struct {
	cfgFile string
	cfg     *settings.Config
	logger  *zap.Logger
	factory *participant.Factory
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the relay command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "relay",
		Short: "Scope-addressed message relay",
		Long: `Relay moves opaque payloads between participants addressed by
hierarchical scopes. A URI such as kafka://broker:9092/robot/arm selects
the transport; without a scheme the configured defaults are used.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: built-in defaults and RELAY_* env)")

	root.AddCommand(newListenCommand(a), newSendCommand(a))
	return root
}

// setup loads settings and builds the logger and factory. Preset state is kept.
func (a *app) setup(*cobra.Command, []string) error {
	if a.factory != nil {
		return nil
	}

	cfg, err := settings.Load(a.cfgFile)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	a.cfg = cfg
	a.logger = log
	a.factory = participant.NewFactory(cfg, participant.WithLogger(log))
	return nil
}
