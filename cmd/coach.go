package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	coachPlayer string
	coachYear   int
	coachFile   string
	coachOut    string
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Generate a coaching report from the season KPIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if coachFile == "" && (coachPlayer == "" || coachYear == 0) {
			return eris.New("either --file or both --player and --year are required")
		}

		needRiot := coachFile == "" && strings.Contains(coachPlayer, "#")
		p, st, err := initPipeline(ctx, needRiot, true)
		if err != nil {
			return err
		}
		defer st.Close()

		var report string
		if coachFile != "" {
			raw, err := os.ReadFile(coachFile)
			if err != nil {
				return eris.Wrapf(err, "read %s", coachFile)
			}
			var doc map[string]any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return eris.Wrapf(err, "parse %s", coachFile)
			}
			report, err = p.CoachDocument(ctx, doc)
			if err != nil {
				return eris.Wrap(err, "coach report")
			}
		} else {
			puuid, err := p.ResolvePlayer(ctx, coachPlayer)
			if err != nil {
				return err
			}
			report, err = p.Coach(ctx, puuid, strconv.Itoa(coachYear))
			if err != nil {
				return eris.Wrap(err, "coach report")
			}
		}

		if coachOut != "" {
			if err := os.WriteFile(coachOut, []byte(report+"\n"), 0o644); err != nil {
				return eris.Wrapf(err, "write %s", coachOut)
			}
			fmt.Printf("report written to %s\n", coachOut)
			return nil
		}

		fmt.Println(report)
		return nil
	},
}

func init() {
	coachCmd.Flags().StringVar(&coachPlayer, "player", "", "Riot ID (GameName#TAG) or PUUID")
	coachCmd.Flags().IntVar(&coachYear, "year", 0, "season year, e.g. 2025")
	coachCmd.Flags().StringVar(&coachFile, "file", "", "read the KPI document from a local JSON file instead of the store")
	coachCmd.Flags().StringVar(&coachOut, "out", "", "write the Markdown report to a file instead of stdout")
	rootCmd.AddCommand(coachCmd)
}
