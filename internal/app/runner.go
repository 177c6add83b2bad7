package app

import (
	"github.com/guttosm/quantlevels/config"
	"github.com/guttosm/quantlevels/internal/feed"
	"github.com/guttosm/quantlevels/internal/ingestion"
)

// NewFeedClient builds the feed client from configuration.
func NewFeedClient(cfg config.Config) *feed.Client {
	return feed.NewClient(feed.Config{
		BaseURL:            cfg.Feed.BaseURL,
		Cookie:             cfg.Feed.Cookie,
		UserAgent:          cfg.Feed.UserAgent,
		PerPage:            cfg.Feed.PerPage,
		RequestsPerSecond:  cfg.Feed.RequestsPerSecond,
		Timeout:            cfg.Feed.Timeout,
		AttachmentParallel: cfg.Feed.AttachmentParallel,
	}, nil)
}

// IngestionOptions maps the levels settings onto runner options.
func IngestionOptions(cfg config.Config) ingestion.Options {
	return ingestion.Options{
		Instrument:    cfg.Levels.Instrument,
		Table:         cfg.Levels.Table,
		PrimaryKeys:   cfg.Levels.PrimaryKeys,
		Mode:          cfg.Levels.WriteMode,
		StagingPrefix: cfg.Levels.StagingPrefix,
		StringWidth:   cfg.Levels.StringWidth,
	}
}

// NewRunner wires an ingestion runner over store reading from source.
func NewRunner(store *Store, source ingestion.PostSource, cfg config.Config) *ingestion.Runner {
	return ingestion.New(store.DB, store.Engine, source, IngestionOptions(cfg))
}
