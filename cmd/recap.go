package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	recapPlayer string
	recapYear   int
)

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Generate and store the strict-JSON season recap",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		needRiot := strings.Contains(recapPlayer, "#")
		p, st, err := initPipeline(ctx, needRiot, true)
		if err != nil {
			return err
		}
		defer st.Close()

		puuid, err := p.ResolvePlayer(ctx, recapPlayer)
		if err != nil {
			return err
		}

		recap, err := p.Recap(ctx, puuid, strconv.Itoa(recapYear))
		if err != nil {
			return eris.Wrap(err, "recap")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recap)
	},
}

func init() {
	recapCmd.Flags().StringVar(&recapPlayer, "player", "", "Riot ID (GameName#TAG) or PUUID (required)")
	recapCmd.Flags().IntVar(&recapYear, "year", 0, "season year, e.g. 2025 (required)")
	_ = recapCmd.MarkFlagRequired("player")
	_ = recapCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(recapCmd)
}
