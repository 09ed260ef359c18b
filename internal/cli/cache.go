package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teletha/bee-sub002/pkg/cache"
	"github.com/teletha/bee-sub002/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository response cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses and library sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.settings()
			if s.NoCache {
				printInfo(cmd.OutOrStdout(), "Caching is disabled")
				return nil
			}
			store, err := c.openCache(cmd, s)
			if err != nil {
				return err
			}
			defer store.Close()

			switch st := store.(type) {
			case *cache.RedisCache:
				if err := st.Clear(cmd.Context()); err != nil {
					return errors.Wrap(errors.ErrCodeNetwork, err, "clear redis cache")
				}
				printSuccess(cmd.OutOrStdout(), "Cleared cache")
				printDetail(cmd.OutOrStdout(), "Redis: %s", s.RedisURL)
			case *cache.FileCache:
				if err := st.Clear(); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "clear cache")
				}
				printSuccess(cmd.OutOrStdout(), "Cleared cache")
				printDetail(cmd.OutOrStdout(), "Directory: %s", st.Dir())
			default:
				printInfo(cmd.OutOrStdout(), "Cache is empty")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.settings().cacheDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeNotFound, err, "get cache dir")
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
