package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/resolve"
)

// Library list formats.
const (
	formatTable = "table"
	formatList  = "list"
	formatJSON  = "json"
)

func (c *CLI) resolveCommand() *cobra.Command {
	var (
		tf     targetFlags
		scope  = artifact.Compile
		format string
		browse bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [coordinate]",
		Short: "List the libraries a project or artifact needs",
		Long: `Resolve collects the dependency graph, settles version conflicts and
prints the libraries needed for a scope. Without a coordinate the project in
the current directory is resolved.

  compile   compile, provided and system dependencies
  runtime   compile and runtime dependencies
  test      test dependencies`,
		Example: `  bee resolve
  bee resolve --scope runtime --format json
  bee resolve com.google.guava:guava:32.1.3-jre`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatTable, formatList, formatJSON:
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (table, list, json)", format)
			}
			t, err := tf.target(args)
			if err != nil {
				return err
			}
			r, closeCache, err := c.newResolver(cmd, false)
			if err != nil {
				return err
			}
			defer closeCache()

			prog := newProgress(loggerFromContext(cmd.Context()))
			libs, err := spin(cmd, "Resolving "+t.String(), func(ctx context.Context) ([]resolve.Library, error) {
				return t.libraries(ctx, r, scope)
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Resolved %d %s libraries of %s", len(libs), scope, t))

			if browse {
				_, err := tea.NewProgram(newLibraryBrowser(t.String(), scope, libs), tea.WithContext(cmd.Context())).Run()
				return err
			}
			return writeLibraries(cmd.OutOrStdout(), libs, format)
		},
	}
	tf.register(cmd)
	cmd.Flags().VarP(&scope, "scope", "s", "library scope: compile, runtime, test, provided, system")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, list, json")
	cmd.Flags().BoolVarP(&browse, "browse", "b", false, "browse the libraries interactively")

	_ = cmd.RegisterFlagCompletionFunc("scope", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(artifact.Scopes))
		for i, s := range artifact.Scopes {
			names[i] = string(s)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatTable, formatList, formatJSON}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func writeLibraries(w io.Writer, libs []resolve.Library, format string) error {
	switch format {
	case formatJSON:
		if libs == nil {
			libs = []resolve.Library{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(libs)
	case formatList:
		for _, l := range libs {
			fmt.Fprintln(w, l.Coordinate())
		}
		return nil
	}
	if len(libs) == 0 {
		printInfo(w, "No libraries")
		return nil
	}
	fmt.Fprintln(w, libraryTable(libs, -1).String())
	printStats(w, fmt.Sprintf("%d libraries", len(libs)))
	return nil
}

// libraryTable renders libs as a table, highlighting row cursor when it is
// not negative.
func libraryTable(libs []resolve.Library, cursor int) *table.Table {
	rows := make([][]string, len(libs))
	for i, l := range libs {
		rows[i] = []string{l.GroupID, l.ArtifactID, l.Version, string(l.Scope), flags(l)}
	}
	selected := lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Group", "Artifact", "Version", "Scope", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return styleHeader.Padding(0, 1)
			case row == cursor:
				return selected.Padding(0, 1)
			case col == 0 || col == 4:
				return style.Foreground(colorGray)
			case col == 3:
				return styleScope(libs[row].Scope).Padding(0, 1)
			}
			return style
		})
}

func flags(l resolve.Library) string {
	var parts []string
	if l.Classifier != "" {
		parts = append(parts, l.Classifier)
	}
	if l.Optional {
		parts = append(parts, "optional")
	}
	if l.LocalPath != "" {
		parts = append(parts, "local")
	}
	return strings.Join(parts, ", ")
}
