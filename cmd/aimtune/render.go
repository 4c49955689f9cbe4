package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/message"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
	"github.com/okian/aimtune/internal/i18n"
)

func printer() *message.Printer {
	return i18n.Default().Printer(lang)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func axisLabel(p *message.Printer, a model.Axis) string {
	return p.Sprintf(message.Key("axis."+string(a), string(a)))
}

func writeJSONOut(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints the axis table and the explanation factors. With a
// non-empty explain axis only that axis' factors are listed.
func renderResult(p *message.Printer, w io.Writer, res model.CalculationResult, explain model.Axis) error {
	fmt.Fprintln(w, p.Sprintf("calc.title", res.GameID))
	if res.Mode != "" {
		fmt.Fprintln(w, p.Sprintf("calc.mode", res.Mode))
	}
	fmt.Fprintln(w, p.Sprintf("calc.confidence", res.Confidence*100))
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintf(tw, "%s\t%s\n", p.Sprintf("table.axis"), p.Sprintf("table.value"))
	for _, axis := range res.Axes() {
		fmt.Fprintf(tw, "%s\t%s\n", axisLabel(p, axis), p.Sprintf("%.0f", res.PerAxisSensitivity[axis]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	axes := res.Axes()
	if explain != "" {
		axes = []model.Axis{explain}
	}
	if len(res.ExplanationFactors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Sprintf("calc.factors"))
		tw = newTable(w)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Sprintf("table.axis"), p.Sprintf("table.factor"), p.Sprintf("table.contribution"))
		for _, axis := range axes {
			for _, f := range res.FactorsFor(axis) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", axisLabel(p, f.Axis), f.Name, fmt.Sprintf("%+.1f%%", f.Contribution))
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Sprintf("calc.result_id", res.ID))
	return nil
}

func renderFeedback(p *message.Printer, w io.Writer, out types.FeedbackOutcome) {
	if out.Duplicate {
		fmt.Fprintln(w, p.Sprintf("feedback.duplicate", out.Feedback.ID))
		return
	}
	fmt.Fprintln(w, p.Sprintf("feedback.recorded", out.Feedback.ID))
}

func renderGames(p *message.Printer, w io.Writer, games []model.GameProfile) error {
	fmt.Fprintln(w, p.Sprintf("games.title"))
	tw := newTable(w)
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s: %s\n", g.GameID, g.Name, p.Sprintf("games.modes"), strings.Join(g.Modes, ", "))
	}
	return tw.Flush()
}

func renderHistory(p *message.Printer, w io.Writer, h types.History) error {
	fmt.Fprintln(w, p.Sprintf("history.title", h.GameID))
	if len(h.Records) == 0 {
		fmt.Fprintln(w, p.Sprintf("history.empty"))
		return nil
	}
	tw := newTable(w)
	for _, f := range h.Records {
		fmt.Fprintf(tw, "%s\t%s\t%+d\t%s\t%s\n", f.Timestamp.Format(time.RFC3339), axisLabel(p, f.Axis), f.RatingDelta, f.ResultID, f.Note)
	}
	return tw.Flush()
}

func renderResults(p *message.Printer, w io.Writer, list types.ResultList) error {
	fmt.Fprintln(w, p.Sprintf("results.title"))
	if len(list.Results) == 0 {
		fmt.Fprintln(w, p.Sprintf("results.empty"))
		return nil
	}
	tw := newTable(w)
	for _, r := range list.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Format(time.RFC3339), r.ID, r.GameID,
			p.Sprintf("%.0f", r.PerAxisSensitivity[model.AxisGeneral]),
			p.Sprintf("%.2f", r.Confidence))
	}
	return tw.Flush()
}

func renderStats(p *message.Printer, w io.Writer, st types.Stats) error {
	fmt.Fprintln(w, p.Sprintf("stats.calculations", st.Calculations))
	fmt.Fprintln(w, p.Sprintf("stats.feedback", st.Feedback))
	last := p.Sprintf("stats.never")
	if st.LastCalculation != nil {
		last = st.LastCalculation.Format(time.RFC3339)
	}
	fmt.Fprintln(w, p.Sprintf("stats.last", last))

	games := make([]string, 0, len(st.PerGame))
	for g := range st.PerGame {
		games = append(games, g)
	}
	sort.Strings(games)
	tw := newTable(w)
	for _, g := range games {
		fmt.Fprintf(tw, "  %s\t%d\n", g, st.PerGame[g])
	}
	return tw.Flush()
}
