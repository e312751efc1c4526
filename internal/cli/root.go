package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowedit/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the configuration file is loaded (--config, or
// the XDG default) and the logger is attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Flowedit edits flow diagrams with branch-aware connections",
		Long:          `Flowedit is an editor core for node/edge flow diagrams. It enforces connection rules between parallel branches, lays diagrams out as trees, and keeps a linear undo history. Use it from the terminal or serve it to a browser UI.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowedit/config.toml)")
	_ = root.MarkPersistentFlagFilename("config", "toml")

	// Register all subcommands
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
