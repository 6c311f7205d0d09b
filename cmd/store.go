package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/riftworks/recap-cli/internal/pipeline"
	"github.com/riftworks/recap-cli/internal/store"
	anthropicpkg "github.com/riftworks/recap-cli/pkg/anthropic"
	"github.com/riftworks/recap-cli/pkg/riot"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "recap.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initRiot() (riot.Client, error) {
	if cfg.Riot.Key == "" {
		return nil, eris.New("riot API key is required (RECAP_RIOT_KEY)")
	}

	platform, ok := riot.Platform(cfg.Riot.Region)
	if !ok {
		return nil, eris.Errorf("unknown region: %s", cfg.Riot.Region)
	}

	opts := []riot.Option{}
	if cfg.Riot.BaseURL != "" {
		opts = append(opts, riot.WithBaseURL(cfg.Riot.BaseURL))
	}
	return riot.NewClient(cfg.Riot.Key, riot.Cluster(platform), opts...), nil
}

func initAnthropic() (anthropicpkg.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (RECAP_ANTHROPIC_KEY)")
	}
	return anthropicpkg.NewClient(cfg.Anthropic.Key), nil
}

// initPipeline wires a Pipeline with a migrated store. Riot and Anthropic
// clients are built on demand per the flags.
func initPipeline(ctx context.Context, needRiot, needLLM bool) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	var riotClient riot.Client
	if needRiot {
		if riotClient, err = initRiot(); err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	var llmClient anthropicpkg.Client
	if needLLM {
		if llmClient, err = initAnthropic(); err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	return pipeline.New(cfg, st, riotClient, llmClient), st, nil
}
