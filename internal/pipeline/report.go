package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/riftworks/recap-cli/internal/model"
)

// Model call budgets. The coach writes a free-form report; the recap is a
// small strict-JSON document.
const (
	coachMaxTokens   = 2000
	coachTemperature = 0.5
	recapMaxTokens   = 600
	recapTemperature = 0.2
)

const recapSystemPrompt = "You are a concise League analyst. Output STRICT JSON with keys: " +
	"title (string), summary (<=80 words), strengths (array of strings), " +
	"improvements (array of strings), awards (array of objects {name, reason}). " +
	"Use only provided stats; be specific to role/champ context."

// coachPrompt renders the coaching instructions with the compacted KPI
// slice inlined as JSON.
func coachPrompt(compacted map[string]any) (string, error) {
	slim, err := json.Marshal(compacted)
	if err != nil {
		return "", eris.Wrap(err, "report: marshal kpi slice")
	}

	var b strings.Builder
	b.WriteString("You are a League of Legends coach.\n")
	b.WriteString("The info you output should be in a fun playful way. Banter if possible but don't be mean.\n")
	b.WriteString("Write ONLY the final report in clean Markdown. No JSON, no prefaces.\n\n")
	b.WriteString("## Summary\n- 3-5 bullets (games, winrate, avg game length)\n\n")
	b.WriteString("## Playstyle\n- kill participation, damage share, cs/min, vision/min, gold/min, dmg/min\n\n")
	b.WriteString("## Objectives\n- totals + conditional winrates when first objective secured\n\n")
	b.WriteString("## Mains & Roles\n- top champions with winrates; role distribution\n\n")
	b.WriteString("## Items & Duos\n- favorite items; best/worst items by winrate; most-played/best/worst duo\n\n")
	b.WriteString("## Coaching Insights\n- 6-10 specific, actionable suggestions tied to the numbers\n\n")
	b.WriteString("KPI JSON (slice):\n")
	b.Write(slim)
	b.WriteString("\n")
	return b.String(), nil
}

// recapPrompt renders the recap request with the compacted KPI document.
func recapPrompt(compacted map[string]any) (string, error) {
	doc, err := json.Marshal(compacted)
	if err != nil {
		return "", eris.Wrap(err, "report: marshal kpi document")
	}
	return "Given this KPIs JSON, produce the recap JSON.\n\n" + string(doc), nil
}

// parseRecap decodes the model's recap JSON. Non-JSON output is wrapped
// into a degraded recap instead of failing the run.
func parseRecap(text string) *model.Recap {
	text = strings.TrimSpace(text)

	// Tolerate code fences around the JSON body.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var recap model.Recap
	if err := json.Unmarshal([]byte(text), &recap); err == nil {
		if recap.Strengths == nil {
			recap.Strengths = []string{}
		}
		if recap.Improvements == nil {
			recap.Improvements = []string{}
		}
		if recap.Awards == nil {
			recap.Awards = []model.Award{}
		}
		return &recap
	}

	return &model.Recap{
		Title:        "Your Year in LoL",
		Summary:      text,
		Strengths:    []string{},
		Improvements: []string{},
		Awards:       []model.Award{},
	}
}

// FormatRunSummary renders a one-line human summary of a KPI run for CLI
// output, with grouped thousands.
func FormatRunSummary(res *model.RunResult) string {
	p := message.NewPrinter(language.English)
	skipped := 0
	for _, n := range res.Skips {
		skipped += n
	}
	return p.Sprintf("aggregated %d of %d matches (%d skipped)",
		res.GamesUsed, res.MatchesListed, skipped)
}
