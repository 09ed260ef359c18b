package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/render"
)

func (c *CLI) treeCommand() *cobra.Command {
	var (
		tf     targetFlags
		depth  int
		losers bool
		plain  bool
	)
	cmd := &cobra.Command{
		Use:   "tree [coordinate]",
		Short: "Print the resolved dependency tree",
		Long: `Tree prints the dependency tree after version conflicts were settled.
Versions that lost a conflict are listed with the version that replaced them
unless --losers=false is given. A partial tree is printed when some artifacts
could not be resolved.`,
		Example: `  bee tree
  bee tree --depth 1 org.slf4j:slf4j-simple:2.0.9`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.collectTarget(cmd, &tf, args, losers)
			if res != nil && res.Root != nil {
				fmt.Fprintln(cmd.OutOrStdout(), render.Tree(res.Root, render.TreeOptions{MaxDepth: depth, Plain: plain}))
			}
			return err
		},
	}
	tf.register(cmd)
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "levels to print below the root (0 = all)")
	cmd.Flags().BoolVar(&losers, "losers", true, "show versions that lost a conflict")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}

// collectTarget collects the command's target. On a collection error the
// partial result is returned along with it.
func (c *CLI) collectTarget(cmd *cobra.Command, tf *targetFlags, args []string, keepLosers bool) (*collect.Result, error) {
	t, err := tf.target(args)
	if err != nil {
		return nil, err
	}
	r, closeCache, err := c.newResolver(cmd, keepLosers)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	prog := newProgress(loggerFromContext(cmd.Context()))
	res, err := spin(cmd, "Collecting "+t.String(), func(ctx context.Context) (*collect.Result, error) {
		return t.collect(ctx, r)
	})
	if err != nil {
		var ce *collect.CollectionError
		if stderrors.As(err, &ce) && res != nil && res.Root != nil {
			printWarning(cmd.ErrOrStderr(), "Partial result, %d problem(s)", len(ce.Errs))
		}
		return res, err
	}
	prog.done(fmt.Sprintf("Collected %d nodes for %s", res.Stats.Nodes, t))
	c.Logger.Debug("collection stats",
		"range_requests", res.Stats.RangeRequests,
		"descriptor_reads", res.Stats.DescriptorReads,
		"pool_hits", res.Stats.PoolHits,
		"pool_misses", res.Stats.PoolMisses)
	return res, nil
}
