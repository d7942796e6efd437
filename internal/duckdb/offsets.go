package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/minigfa/internal/gtf"
	"github.com/inodb/minigfa/internal/liftover"
)

// Inputs identifies the reference genome and graph a resolution was derived from.
type Inputs struct {
	Genome FileFingerprint
	Graph  FileFingerprint
}

// resultKey is the composite key for deduplicating resolutions before writing.
type resultKey struct {
	geneID, pathName string
}

// WriteResolutions stores resolutions derived from in, replacing any earlier
// result for the same (gene, path). Duplicates within the batch keep the last entry.
func (s *Store) WriteResolutions(in Inputs, results []liftover.Resolution) error {
	if len(results) == 0 {
		return nil
	}

	last := make(map[resultKey]int, len(results))
	for i, r := range results {
		last[resultKey{r.GeneID, r.PathName}] = i
	}
	deduped := make([]liftover.Resolution, 0, len(last))
	for i, r := range results {
		if last[resultKey{r.GeneID, r.PathName}] == i {
			deduped = append(deduped, r)
		}
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	for _, r := range deduped {
		if _, err := conn.ExecContext(ctx,
			"DELETE FROM offset_results WHERE gene_id=? AND path_name=?",
			r.GeneID, r.PathName); err != nil {
			return fmt.Errorf("replace offset result %s/%s: %w", r.GeneID, r.PathName, err)
		}
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "offset_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			r.GeneID, r.PathName,
			in.Genome.Path, in.Genome.Size, in.Genome.modTimeString(),
			in.Graph.Path, in.Graph.Size, in.Graph.modTimeString(),
			r.Chrom, r.GeneStart, r.GeneEnd, r.MatchPos, r.Offset,
		); err != nil {
			return fmt.Errorf("append offset result: %w", err)
		}
	}

	return appender.Flush()
}

// LookupResolution returns the cached resolution of gene against pathName.
// A result derived from files with different fingerprints, or from the gene
// at another location, is treated as absent.
func (s *Store) LookupResolution(gene *gtf.Gene, pathName string, in Inputs) (liftover.Resolution, bool, error) {
	row := s.db.QueryRow(`SELECT chrom, gene_start, gene_end, match_pos, path_offset
		FROM offset_results
		WHERE gene_id=? AND path_name=?
		AND genome_size=? AND genome_modtime=?
		AND graph_size=? AND graph_modtime=?`,
		gene.ID, pathName,
		in.Genome.Size, in.Genome.modTimeString(),
		in.Graph.Size, in.Graph.modTimeString())

	res := liftover.Resolution{GeneID: gene.ID, PathName: pathName}
	if err := row.Scan(&res.Chrom, &res.GeneStart, &res.GeneEnd, &res.MatchPos, &res.Offset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return liftover.Resolution{}, false, nil
		}
		return liftover.Resolution{}, false, fmt.Errorf("query offset result: %w", err)
	}
	if !res.Matches(gene) {
		return liftover.Resolution{}, false, nil
	}
	return res, true, nil
}

// ListResolutions returns every cached resolution for pathName ordered by gene.
func (s *Store) ListResolutions(pathName string) ([]liftover.Resolution, error) {
	rows, err := s.db.Query(`SELECT gene_id, chrom, gene_start, gene_end, match_pos, path_offset
		FROM offset_results
		WHERE path_name=?
		ORDER BY gene_id`, pathName)
	if err != nil {
		return nil, fmt.Errorf("query offset results: %w", err)
	}
	defer rows.Close()

	var out []liftover.Resolution
	for rows.Next() {
		res := liftover.Resolution{PathName: pathName}
		if err := rows.Scan(&res.GeneID, &res.Chrom, &res.GeneStart, &res.GeneEnd, &res.MatchPos, &res.Offset); err != nil {
			return nil, fmt.Errorf("scan offset result: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offset results: %w", err)
	}
	return out, nil
}

// ClearResolutions removes all cached offset results.
func (s *Store) ClearResolutions() error {
	_, err := s.db.Exec("DELETE FROM offset_results")
	return err
}
