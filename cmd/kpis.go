package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/riftworks/recap-cli/internal/pipeline"
)

var (
	kpisPlayer string
	kpisYear   int
	kpisLimit  int
	kpisXlsx   string
)

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Aggregate season KPIs from stored matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The riot client is only needed to resolve a Riot ID.
		needRiot := strings.Contains(kpisPlayer, "#")
		p, st, err := initPipeline(ctx, needRiot, false)
		if err != nil {
			return err
		}
		defer st.Close()

		puuid, err := p.ResolvePlayer(ctx, kpisPlayer)
		if err != nil {
			return err
		}
		year := strconv.Itoa(kpisYear)

		result, err := p.ComputeKPIs(ctx, puuid, year, kpisLimit)
		if err != nil {
			return eris.Wrap(err, "compute kpis")
		}

		fmt.Println(pipeline.FormatRunSummary(result))

		doc, err := p.LoadKpis(ctx, puuid, year)
		if err != nil {
			return err
		}

		if kpisXlsx != "" {
			if err := exportXlsx(kpisXlsx, doc); err != nil {
				return eris.Wrap(err, "export xlsx")
			}
			fmt.Printf("workbook written to %s\n", kpisXlsx)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	kpisCmd.Flags().StringVar(&kpisPlayer, "player", "", "Riot ID (GameName#TAG) or PUUID (required)")
	kpisCmd.Flags().IntVar(&kpisYear, "year", 0, "season year, e.g. 2025 (required)")
	kpisCmd.Flags().IntVar(&kpisLimit, "limit", 0, "cap the number of stored matches aggregated (0 = no cap)")
	kpisCmd.Flags().StringVar(&kpisXlsx, "xlsx", "", "also export the KPI document as an xlsx workbook")
	_ = kpisCmd.MarkFlagRequired("player")
	_ = kpisCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(kpisCmd)
}
