package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"campaign-engine/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for local JSON fixture files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based fixture loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-file-loader").Logger(),
	}
}

// Load reads a JSON fixture file containing an array of campaign definitions.
func (l *fileLoader) Load(_ context.Context, path string) ([]model.Campaign, error) {
	l.logger.Info().Str("file", path).Msg("loading campaign fixture")

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read fixture file")
		return nil, fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}

	var campaigns []model.Campaign
	if err := json.Unmarshal(data, &campaigns); err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse fixture file")
		return nil, fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("campaigns", len(campaigns)).
		Msg("campaign fixture loaded")

	return campaigns, nil
}
