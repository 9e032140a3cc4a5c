// Package cli implements the hapticsctl command line tool.
package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/banshee-data/haptics"
	"github.com/banshee-data/haptics/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for hapticsctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hapticsctl",
		Short: "Drive and inspect haptic devices",
		Long:  "hapticsctl lists haptic devices, runs the force-feedback loop and converts recordings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Verbose {
				logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
				haptics.SetLogger(logger.Printf)
			} else {
				haptics.SetLogger(nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "configuration file (.json, .yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDevicesCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRecordingsCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig returns the configuration named by --config, or an empty one.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.Config == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	return cfg, nil
}

// newContext builds a haptics context from --config.
func (o *RootOptions) newContext(extra ...haptics.Option) (*haptics.Context, error) {
	var opts []haptics.Option
	if o.Config != "" {
		opts = append(opts, haptics.WithConfigFile(o.Config))
	}
	ctx, err := haptics.New(append(opts, extra...)...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "create context", err)
	}
	return ctx, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
