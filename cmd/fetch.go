package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	fetchPlayer      string
	fetchYear        int
	fetchLimit       int
	fetchRegion      string
	fetchConcurrency int
	fetchTimelines   bool
	fetchForce       bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a player's matches for one season",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if fetchRegion != "" {
			cfg.Riot.Region = fetchRegion
		}
		if fetchConcurrency > 0 {
			cfg.Fetch.Concurrency = fetchConcurrency
		}
		if fetchTimelines {
			cfg.Fetch.IncludeTimelines = true
		}
		if fetchForce {
			cfg.Fetch.Force = true
		}

		p, st, err := initPipeline(ctx, true, false)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := p.FetchSeason(ctx, fetchPlayer, fetchYear, fetchLimit)
		if err != nil {
			return eris.Wrap(err, "fetch season")
		}

		zap.L().Info("fetch complete",
			zap.String("puuid", summary.PUUID),
			zap.Int("listed", summary.Listed),
			zap.Int("downloaded", summary.Downloaded),
			zap.Int("skipped_existing", summary.SkippedExisting),
			zap.Int("failed", summary.Failed),
			zap.Int("timelines", summary.TimelinesStored),
		)

		pr := message.NewPrinter(language.English)
		pr.Printf("fetched %d of %d matches for %s (%d already stored, %d failed)\n",
			summary.Downloaded, summary.Listed, summary.PUUID,
			summary.SkippedExisting, summary.Failed)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPlayer, "player", "", "Riot ID (GameName#TAG) or PUUID (required)")
	fetchCmd.Flags().IntVar(&fetchYear, "year", 0, "season year, e.g. 2025 (required)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "cap the number of matches fetched (0 = no cap)")
	fetchCmd.Flags().StringVar(&fetchRegion, "region", "", "player region, e.g. na or euw (default from config)")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 0, "parallel match downloads (default from config)")
	fetchCmd.Flags().BoolVar(&fetchTimelines, "timelines", false, "also download match timelines")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "re-download matches already stored")
	_ = fetchCmd.MarkFlagRequired("player")
	_ = fetchCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(fetchCmd)
}
