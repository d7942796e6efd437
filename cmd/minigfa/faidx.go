package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/minigfa/internal/fai"
)

func newFaidxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "faidx <genome.fa>",
		Short: "Build the .fai layout index of a FASTA file",
		Long: `Build the .fai layout index of a FASTA file. The index is written next to
the FASTA file and is compatible with samtools faidx.`,
		Example: `  minigfa faidx hg38.fa`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, faiPath, err := fai.BuildFile(args[0])
			if err != nil {
				return err
			}
			logger.Info("wrote layout index",
				zap.String("path", faiPath),
				zap.Int("records", idx.Len()))
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d records into %s\n", idx.Len(), faiPath)
			return nil
		},
	}
}
