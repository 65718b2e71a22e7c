// Package seed loads campaign fixtures into the store at startup. Fixtures
// are JSON arrays of campaign definitions, read from the local filesystem
// or from S3.
package seed

import (
	"context"
	"fmt"

	"campaign-engine/internal/model"
	"campaign-engine/internal/service"

	"github.com/rs/zerolog"
)

// Loader defines the interface for reading campaign fixture files.
type Loader interface {
	// Load reads a fixture and returns the campaign definitions it contains.
	Load(ctx context.Context, source string) ([]model.Campaign, error)
}

// Apply loads a fixture and creates each campaign through the campaign
// service so normal validation applies. Individual invalid definitions are
// skipped, not fatal; a fixture that cannot be read at all is.
func Apply(ctx context.Context, loader Loader, source string, campaigns service.CampaignService, logger zerolog.Logger) (int, error) {
	logger = logger.With().Str("component", "seed").Logger()

	defs, err := loader.Load(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("failed to load campaign fixture: %w", err)
	}

	created := 0
	for i := range defs {
		c := defs[i]
		if _, err := campaigns.Create(ctx, &c); err != nil {
			logger.Warn().Err(err).Str("name", c.Name).Msg("skipping fixture campaign")
			continue
		}
		created++
	}

	logger.Info().
		Str("source", source).
		Int("total", len(defs)).
		Int("created", created).
		Msg("campaign fixtures applied")

	return created, nil
}
