package main

import (
	"github.com/spf13/cobra"

	"github.com/inodb/minigfa/internal/fasta"
	"github.com/inodb/minigfa/internal/output"
)

func newExtractCmd() *cobra.Command {
	var (
		faiPath string
		width   int
	)

	cmd := &cobra.Command{
		Use:   "extract <genome.fa> <region>...",
		Short: "Extract reference sequence by 1-based coordinates",
		Long: `Extract reference sequence for one or more regions. Regions are written as
chrom:start-end with 1-based inclusive coordinates. The FASTA file must have a
.fai layout index (see "minigfa faidx").`,
		Example: `  minigfa extract hg38.fa chr12:25205246-25250929
  minigfa extract --fai ref.fai hg38.fa chr1:100-200 chr2:1-50`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fasta.Open(args[0], faiPath)
			if err != nil {
				return err
			}
			defer r.Close()

			w := output.NewFASTAWriter(cmd.OutOrStdout(), width)
			for _, region := range args[1:] {
				seq, err := r.ExtractRegion(region)
				if err != nil {
					return err
				}
				if err := w.Write(region, seq); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&faiPath, "fai", "", "Layout index path (default <genome.fa>.fai)")
	cmd.Flags().IntVarP(&width, "width", "w", output.DefaultLineWidth, "Sequence line width (0 for a single line)")

	return cmd
}

func newSegmentCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:     "segment <graph.gfa> <segment-id>...",
		Short:   "Print the sequence of graph segments",
		Example: `  minigfa segment KRAS.gfa 12 13 14`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := openGraph(args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			w := output.NewFASTAWriter(cmd.OutOrStdout(), width)
			for _, id := range args[1:] {
				seq, err := g.SegmentSequence(id)
				if err != nil {
					return err
				}
				if err := w.Write(id, seq); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", output.DefaultLineWidth, "Sequence line width (0 for a single line)")

	return cmd
}
