package sessions

import (
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/julefagdag/agenda/internal/models"
)

// SeedFile is the YAML agenda layout: one day, wall-clock times in one timezone.
type SeedFile struct {
	Date     string        `yaml:"date"`
	Timezone string        `yaml:"timezone"`
	Sessions []SeedSession `yaml:"sessions"`
}

// SeedSession is one agenda entry with "HH:MM" times.
type SeedSession struct {
	Title       string  `yaml:"title"`
	Speaker     *string `yaml:"speaker"`
	Room        string  `yaml:"room"`
	Start       string  `yaml:"start"`
	End         string  `yaml:"end"`
	Description *string `yaml:"description"`
}

// ParseSeed decodes a YAML agenda into sessions. Every entry needs a room and a start that
// does not come after its end.
func ParseSeed(r io.Reader) ([]models.Session, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode agenda: %w", err)
	}
	loc := time.UTC
	if f.Timezone != "" {
		l, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone %q: %w", f.Timezone, err)
		}
		loc = l
	}
	day, err := time.ParseInLocation(time.DateOnly, f.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", f.Date, err)
	}

	out := make([]models.Session, 0, len(f.Sessions))
	for i, e := range f.Sessions {
		if strings.TrimSpace(e.Room) == "" {
			return nil, fmt.Errorf("session %d (%q): room is required", i, e.Title)
		}
		start, err := atClock(day, e.Start)
		if err != nil {
			return nil, fmt.Errorf("session %d (%q) start: %w", i, e.Title, err)
		}
		end, err := atClock(day, e.End)
		if err != nil {
			return nil, fmt.Errorf("session %d (%q) end: %w", i, e.Title, err)
		}
		if start.After(end) {
			return nil, fmt.Errorf("session %d (%q): start %s is after end %s", i, e.Title, e.Start, e.End)
		}
		out = append(out, models.Session{
			Title:       e.Title,
			Speaker:     e.Speaker,
			Room:        e.Room,
			StartTime:   start,
			EndTime:     end,
			Description: e.Description,
		})
	}
	return out, nil
}

func atClock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// ShiftDate moves every session starting on from (in loc) to the same wall-clock time on to.
// It returns only the sessions it moved.
func ShiftDate(list []models.Session, from, to time.Time, loc *time.Location) []models.Session {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	var moved []models.Session
	for _, s := range list {
		start := s.StartTime.In(loc)
		if y, m, d := start.Date(); y != fy || m != fm || d != fd {
			continue
		}
		end := s.EndTime.In(loc)
		dayOffset := daysBetween(start, end)
		s.StartTime = time.Date(ty, tm, td, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), loc)
		s.EndTime = time.Date(ty, tm, td+dayOffset, end.Hour(), end.Minute(), end.Second(), end.Nanosecond(), loc)
		moved = append(moved, s)
	}
	return moved
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return int(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC).Sub(time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)).Hours() / 24)
}
