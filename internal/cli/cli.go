package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teletha/bee-sub002/pkg/buildinfo"
	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/observability/prom"
)

// appName is the application name used for directories and display.
const appName = "bee"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	config  *viper.Viper
	metrics *prom.Hooks
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: newConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "bee resolves Maven dependency graphs",
		Long: `bee collects the transitive dependencies of a project or a single artifact
from Maven repositories, resolves version conflicts the way Maven does and
prints the resulting libraries, tree or graph.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())
	c.bindFlags(root)

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// FormatError renders a command error for the terminal. Coded errors show
// their code and message without the wrapped cause.
func FormatError(err error) string {
	msg := errors.UserMessage(err)
	code := errors.GetCode(err)
	if code != "" {
		msg = StyleDim.Render(string(code)) + " " + msg
	}
	msg = styleIconError.Render(iconError) + " " + msg
	if hint := code.Hint(); hint != "" {
		msg += "\n  " + StyleDim.Render(hint)
	}
	return msg
}

// ExitCode returns the process exit status for a failed command: 2 for
// invalid input, 1 otherwise.
func ExitCode(err error) int {
	if errors.GetCode(err).IsInput() {
		return 2
	}
	return 1
}
