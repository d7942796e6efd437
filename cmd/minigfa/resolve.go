package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/minigfa/internal/duckdb"
	"github.com/inodb/minigfa/internal/fasta"
	"github.com/inodb/minigfa/internal/gtf"
	"github.com/inodb/minigfa/internal/liftover"
	"github.com/inodb/minigfa/internal/output"
)

// resolveInputs names the files a liftover reads.
type resolveInputs struct {
	genomePath string
	faiPath    string
	graphPath  string
	gtfPath    string
	pathName   string
}

// resolved is the outcome for one requested gene.
type resolved struct {
	geneID     string
	resolution liftover.Resolution
	source     string // "cache" or "resolved"
	err        error
}

func newOffsetCmd() *cobra.Command {
	var (
		in    resolveInputs
		genes []string
	)

	cmd := &cobra.Command{
		Use:   "offset <genome.fa> <graph.gfa> <annotation.gtf> <path-name>",
		Short: "Compute the coordinate offset of genes along a graph path",
		Long: `Locate each gene's reference sequence in the sequence of a graph path and
report the offset subtracted from the gene's reference coordinates. Genes are
resolved in parallel; results are cached in DuckDB under cache.dir.`,
		Example: `  minigfa offset hg38.fa KRAS.gfa gencode.gtf.gz GRCh38#chr12 --gene ENSG00000133703`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.genomePath, in.graphPath, in.gtfPath, in.pathName = args[0], args[1], args[2], args[3]

			results, err := resolveGenes(cmd.Context(), in, genes)
			if err != nil {
				return err
			}

			w := output.NewTabWriter(cmd.OutOrStdout())
			if err := w.WriteHeader(); err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
				}
				if err := w.Write(r.geneID, in.pathName, r.resolution, r.source, r.err); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d genes could not be resolved", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&genes, "gene", "g", nil, "Gene ID to resolve (repeatable)")
	cmd.Flags().StringVar(&in.faiPath, "fai", "", "Layout index path (default <genome.fa>.fai)")
	_ = cmd.MarkFlagRequired("gene")

	return cmd
}

func newRewriteCmd() *cobra.Command {
	var (
		in         resolveInputs
		geneID     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <genome.fa> <graph.gfa> <annotation.gtf> <path-name>",
		Short: "Rewrite a gene's annotations into path coordinates",
		Long: `Resolve the gene's offset along the path and write its annotation records
with start and end translated into path coordinates. "#!" header lines are kept.
The default output is <annotation>_<gene>_mini.gtf next to the input.`,
		Example: `  minigfa rewrite hg38.fa KRAS.gfa gencode.gtf GRCh38#chr12 --gene ENSG00000133703
  minigfa rewrite hg38.fa KRAS.gfa gencode.gtf GRCh38#chr12 -g KRAS_ID -o -`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.genomePath, in.graphPath, in.gtfPath, in.pathName = args[0], args[1], args[2], args[3]

			results, err := resolveGenes(cmd.Context(), in, []string{geneID})
			if err != nil {
				return err
			}
			if results[0].err != nil {
				return results[0].err
			}
			res := results[0].resolution

			if outputPath == "" {
				outputPath = gtf.MiniOutputPath(in.gtfPath, geneID)
			}
			n, err := writeRewrite(cmd, in.gtfPath, outputPath, res)
			if err != nil {
				return err
			}
			logger.Info("rewrote annotations",
				zap.String("gene", geneID),
				zap.Int64("offset", res.Offset),
				zap.Int("records", n),
				zap.String("output", outputPath))
			if outputPath != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d records to %s (offset %d)\n", n, outputPath, res.Offset)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&geneID, "gene", "g", "", "Gene ID to rewrite")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file ('-' for stdout)")
	cmd.Flags().StringVar(&in.faiPath, "fai", "", "Layout index path (default <genome.fa>.fai)")
	_ = cmd.MarkFlagRequired("gene")

	return cmd
}

func writeRewrite(cmd *cobra.Command, gtfPath, outputPath string, res liftover.Resolution) (int, error) {
	src, err := gtf.Open(gtfPath)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if outputPath == "-" {
		return res.RewriteAnnotations(src, cmd.OutOrStdout())
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	n, err := res.RewriteAnnotations(src, out)
	if err != nil {
		out.Close()
		os.Remove(outputPath)
		return 0, err
	}
	return n, out.Close()
}

// resolveGenes returns one result per gene ID in input order. Offsets cached
// for unchanged inputs are reused; the rest are resolved in parallel and
// cached. Only failures to read the inputs are returned as an error.
func resolveGenes(ctx context.Context, in resolveInputs, geneIDs []string) ([]resolved, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := gtf.Open(in.gtfPath)
	if err != nil {
		return nil, err
	}
	genes, err := gtf.FindGenes(src, geneIDs)
	src.Close()
	if err != nil {
		return nil, err
	}

	var (
		store  *duckdb.Store
		inputs duckdb.Inputs
	)
	if viper.GetBool(keyCacheOffsets) {
		store, inputs, err = openOffsetStore(in)
		if err != nil {
			return nil, err
		}
		defer store.Close()
	}

	results := make([]resolved, len(geneIDs))
	var pending []*gtf.Gene
	var pendingIdx []int
	for i, id := range geneIDs {
		results[i].geneID = id
		if store != nil {
			res, ok, err := store.LookupResolution(genes[id], in.pathName, inputs)
			if err != nil {
				return nil, err
			}
			if ok {
				results[i].resolution = res
				results[i].source = "cache"
				continue
			}
		}
		pending = append(pending, genes[id])
		pendingIdx = append(pendingIdx, i)
	}
	if len(pending) == 0 {
		return results, nil
	}

	genome, err := fasta.Open(in.genomePath, in.faiPath)
	if err != nil {
		return nil, err
	}
	defer genome.Close()

	graph, err := openGraph(in.graphPath)
	if err != nil {
		return nil, err
	}
	defer graph.Close()

	resolver := liftover.NewResolver(genome, graph)
	resolver.SetLogger(logger)

	work, err := resolver.ResolveAll(ctx, pending, in.pathName, viper.GetInt(keyResolveWorkers))
	if err != nil {
		return nil, err
	}

	var fresh []liftover.Resolution
	for j, w := range work {
		r := &results[pendingIdx[j]]
		r.resolution, r.err, r.source = w.Resolution, w.Err, "resolved"
		if w.Err == nil {
			fresh = append(fresh, w.Resolution)
		}
	}

	if store != nil {
		if err := store.WriteResolutions(inputs, fresh); err != nil {
			logger.Warn("could not cache offsets", zap.Error(err))
		}
	}
	return results, nil
}

func openOffsetStore(in resolveInputs) (*duckdb.Store, duckdb.Inputs, error) {
	genomeFP, err := duckdb.StatFile(in.genomePath)
	if err != nil {
		return nil, duckdb.Inputs{}, err
	}
	graphFP, err := duckdb.StatFile(in.graphPath)
	if err != nil {
		return nil, duckdb.Inputs{}, err
	}

	store, err := duckdb.Open(filepath.Join(viper.GetString(keyCacheDir), "offsets.duckdb"))
	if err != nil {
		return nil, duckdb.Inputs{}, err
	}
	return store, duckdb.Inputs{Genome: genomeFP, Graph: graphFP}, nil
}
