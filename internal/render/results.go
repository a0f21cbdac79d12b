package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/stats"
)

const barWidth = 20

// Bar draws a percentage as a fixed width bar.
func Bar(percentage int) string {
	percentage = max(0, min(100, percentage))
	filled := percentage * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// Results renders per-session feedback statistics in session order.
func Results(results []stats.SessionFeedbackResult, loc *time.Location) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(Heading.Render(r.Session.DisplayTitle()))
		b.WriteString("\n")
		b.WriteString(Muted.Render(TimeRange(r.Session, loc) + " • " + r.Session.Room))
		b.WriteString("\n")
		st := r.Statistics
		if st.TotalFeedback == 0 {
			b.WriteString(Muted.Render("Ingen tilbakemeldinger mottatt for dette foredraget"))
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "Totalt antall: %d\n", st.TotalFeedback)
		statLine(&b, "Nyttig", st.UsefulCount, st.TotalFeedback, st.UsefulPercentage)
		statLine(&b, "Lært noe", st.LearnedCount, st.TotalFeedback, st.LearnedPercentage)
		statLine(&b, "Vil utforske videre", st.ExploreCount, st.TotalFeedback, st.ExplorePercentage)
	}
	return b.String()
}

func statLine(b *strings.Builder, label string, count, total, pct int) {
	fmt.Fprintf(b, "  %-20s %s %3d%%  (%d av %d)\n", label, Bar(pct), pct, count, total)
}

// EventFeedback renders the rating summary followed by the comments, newest first.
func EventFeedback(summary stats.RatingSummary, entries []models.EventFeedback, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(Heading.Render("Tilbakemeldinger på arrangementet"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Snitt: %s (%d vurderinger)\n", summary.Average, summary.RatedCount)
	for _, bucket := range summary.Distribution {
		fmt.Fprintf(&b, "  %s %s %3d%%  (%d)\n", Star.Render(strings.Repeat("★", bucket.Rating)+strings.Repeat("☆", stats.MaxRating-bucket.Rating)), Bar(bucket.Percentage), bucket.Percentage, bucket.Count)
	}
	for _, e := range entries {
		if e.Comment == nil {
			continue
		}
		meta := e.CreatedAt.In(loc).Format("02.01 15:04")
		if e.Rating != nil {
			meta += fmt.Sprintf(" • %d/%d", *e.Rating, stats.MaxRating)
		}
		b.WriteString("\n")
		b.WriteString(Muted.Render(meta))
		b.WriteString("\n")
		b.WriteString(*e.Comment)
		b.WriteString("\n")
	}
	return b.String()
}
