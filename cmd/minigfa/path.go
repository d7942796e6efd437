package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/minigfa/internal/gfa"
	"github.com/inodb/minigfa/internal/output"
)

func newPathCmd() *cobra.Command {
	var (
		steps  bool
		width  int
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "path <graph.gfa> [path-name]",
		Short: "List graph paths or print a path's sequence",
		Long: `Without a path name, list the paths of the graph with their step counts.
With a path name, print the sequence spelled by the path, reverse-complementing
segments traversed in reverse. --steps prints the oriented steps instead.`,
		Example: `  minigfa path KRAS.gfa
  minigfa path --prefix HG002#1# KRAS.gfa
  minigfa path KRAS.gfa GRCh38#chr12
  minigfa path --steps KRAS.gfa GRCh38#chr12`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := openGraph(args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			if len(args) == 1 {
				return listPaths(cmd, g, prefix)
			}
			if steps {
				return printSteps(cmd, g, args[1])
			}

			seq, err := g.PathSequence(args[1])
			if err != nil {
				return err
			}
			w := output.NewFASTAWriter(cmd.OutOrStdout(), width)
			if err := w.Write(args[1], seq); err != nil {
				return err
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "List only paths whose name starts with this prefix")
	cmd.Flags().BoolVar(&steps, "steps", false, "Print oriented steps, one per line")
	cmd.Flags().IntVarP(&width, "width", "w", output.DefaultLineWidth, "Sequence line width (0 for a single line)")

	return cmd
}

func listPaths(cmd *cobra.Command, g *gfa.Graph, prefix string) error {
	out := bufio.NewWriter(cmd.OutOrStdout())
	for p, err := range g.PathsWithPrefix(prefix) {
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%d\n", p.Name(), p.Len())
	}
	return out.Flush()
}

func printSteps(cmd *cobra.Command, g *gfa.Graph, name string) error {
	p, err := g.Path(name)
	if err != nil {
		return err
	}
	steps, err := p.Steps()
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	for _, s := range steps {
		fmt.Fprintln(out, s)
	}
	return out.Flush()
}
