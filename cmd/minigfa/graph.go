package main

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/minigfa/internal/duckdb"
	"github.com/inodb/minigfa/internal/gfa"
)

// openGraph opens a GFA file, reusing the cached index snapshot when the
// file is unchanged since it was last indexed with the same strictness.
func openGraph(path string) (*gfa.Graph, error) {
	opts := gfa.BuildOptions{Strict: viper.GetBool(keyGraphStrict)}
	if !viper.GetBool(keyGraphIndexCache) {
		return gfa.Open(path, opts)
	}

	fp, err := duckdb.StatFile(path)
	if err != nil {
		return nil, err
	}
	ic := duckdb.NewIndexCache(viper.GetString(keyCacheDir))

	if ic.Valid(fp, opts.Strict) {
		idx, err := ic.Load(fp)
		if err == nil {
			logger.Debug("loaded graph index from cache", zap.String("graph", path))
			return gfa.OpenWithIndex(path, idx)
		}
		logger.Warn("ignoring unreadable index cache", zap.String("graph", path), zap.Error(err))
		ic.Clear(fp)
	}

	g, err := gfa.Open(path, opts)
	if err != nil {
		return nil, err
	}
	if err := ic.Write(g.Index(), fp, opts.Strict); err != nil {
		logger.Warn("could not cache graph index", zap.String("graph", path), zap.Error(err))
	} else {
		logger.Debug("cached graph index",
			zap.String("graph", path),
			zap.Int("segments", g.SegmentCount()),
			zap.Int("paths", g.PathCount()))
	}
	return g, nil
}
