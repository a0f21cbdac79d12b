package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/favorites"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/notify"
)

// Section headings, current first.
const (
	HeadingCurrent   = "Nå pågår"
	HeadingUpcoming  = "Kommende"
	HeadingCompleted = "Ferdig"
	emptyAgenda      = "Ingen sesjoner funnet."
)

// TimeRange formats "09:00 - 09:45" in loc.
func TimeRange(s models.Session, loc *time.Location) string {
	return s.StartTime.In(loc).Format("15:04") + " - " + s.EndTime.In(loc).Format("15:04")
}

// SessionLine is one session: favorite marker, time, title, room and speaker.
func SessionLine(s models.Session, now time.Time, favs favorites.Set, loc *time.Location) string {
	marker := "  "
	if favs.Contains(s.ID.String()) {
		marker = Star.Render("★ ")
	}
	line := marker + TimeRange(s, loc) + "  " + Title.Render(s.DisplayTitle())
	details := []string{s.Room}
	if s.Speaker != nil && *s.Speaker != "" {
		details = append(details, *s.Speaker)
	}
	line += "  " + Muted.Render(strings.Join(details, " • "))
	switch agenda.Classify(s, now) {
	case agenda.StatusCurrent:
		line += "  " + Live.Render("pågår")
	case agenda.StatusUpcoming:
		if m := agenda.MinutesUntilStart(s, now); m <= notify.BannerWindowMinutes {
			line += "  " + Muted.Render(fmt.Sprintf("om %d min", m))
		}
	}
	return line
}

// Agenda renders the grouped agenda with an optional reminder banner on top. Empty
// sections are omitted.
func Agenda(g agenda.Grouped, now time.Time, favs favorites.Set, banner *notify.Banner, loc *time.Location) string {
	var b strings.Builder
	if banner != nil {
		b.WriteString(BannerBox.Render(Title.Render(banner.Session.DisplayTitle()) + "\n" + banner.Text()))
		b.WriteString("\n")
	}
	if g.Len() == 0 {
		b.WriteString(Muted.Render(emptyAgenda))
		b.WriteString("\n")
		return b.String()
	}
	section := func(heading string, list []models.Session) {
		if len(list) == 0 {
			return
		}
		b.WriteString(Heading.Render(heading))
		b.WriteString("\n")
		for _, s := range list {
			b.WriteString(SessionLine(s, now, favs, loc))
			b.WriteString("\n")
		}
	}
	section(HeadingCurrent, g.Current)
	section(HeadingUpcoming, g.Upcoming)
	section(HeadingCompleted, g.Completed)
	return b.String()
}

// Notification renders a delivered reminder for the terminal.
func Notification(n notify.Notification) string {
	return lipgloss.JoinVertical(lipgloss.Left, Alert.Render("🔔 "+n.Title), n.Body)
}
