package notify

import (
	"time"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/favorites"
	"github.com/julefagdag/agenda/internal/models"
)

// BannerWindowMinutes bounds how far ahead the upcoming banner looks.
const BannerWindowMinutes = 15

// Banner points at the next favorite session about to start.
type Banner struct {
	Session models.Session
	Minutes int
}

// Text is the banner line shown above the agenda.
func (b Banner) Text() string {
	return Build(b.Session, b.Minutes).Body
}

// UpcomingBanner returns the favorite session with the fewest whole minutes until start,
// counting only sessions 1 to BannerWindowMinutes minutes away. It returns nil when none qualify.
func UpcomingBanner(now time.Time, sessions []models.Session, favs favorites.Set) *Banner {
	var best *Banner
	for _, session := range sessions {
		if !favs.Contains(session.ID.String()) {
			continue
		}
		m := agenda.FloorMinutesUntilStart(session, now)
		if m <= 0 || m > BannerWindowMinutes {
			continue
		}
		if best == nil || m < best.Minutes {
			best = &Banner{Session: session, Minutes: m}
		}
	}
	return best
}
