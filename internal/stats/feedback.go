// Package stats aggregates raw feedback into the figures shown to organizers.
package stats

import (
	"github.com/google/uuid"

	"github.com/julefagdag/agenda/internal/models"
)

// FeedbackStatistics summarizes the boolean answers given for one session.
type FeedbackStatistics struct {
	TotalFeedback     int `json:"total_feedback"`
	UsefulCount       int `json:"useful_count"`
	LearnedCount      int `json:"learned_count"`
	ExploreCount      int `json:"explore_count"`
	UsefulPercentage  int `json:"useful_percentage"`
	LearnedPercentage int `json:"learned_percentage"`
	ExplorePercentage int `json:"explore_percentage"`
}

// SessionFeedbackResult pairs a session with its statistics and raw feedback.
type SessionFeedbackResult struct {
	Session    models.Session     `json:"session"`
	Statistics FeedbackStatistics `json:"statistics"`
	Feedbacks  []models.Feedback  `json:"feedbacks"`
}

// Percent returns round-half-up(100*count/total), or 0 when total is 0.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*count + total) / (2 * total)
}

// Aggregate counts each flag across feedbacks.
func Aggregate(feedbacks []models.Feedback) FeedbackStatistics {
	st := FeedbackStatistics{TotalFeedback: len(feedbacks)}
	for _, f := range feedbacks {
		if f.Useful {
			st.UsefulCount++
		}
		if f.Learned {
			st.LearnedCount++
		}
		if f.Explore {
			st.ExploreCount++
		}
	}
	st.UsefulPercentage = Percent(st.UsefulCount, st.TotalFeedback)
	st.LearnedPercentage = Percent(st.LearnedCount, st.TotalFeedback)
	st.ExplorePercentage = Percent(st.ExploreCount, st.TotalFeedback)
	return st
}

// BuildResults groups feedbacks by session and aggregates each group. Results follow
// the order of sessions; feedback for unknown sessions is ignored.
func BuildResults(sessions []models.Session, feedbacks []models.Feedback) []SessionFeedbackResult {
	bySession := make(map[uuid.UUID][]models.Feedback, len(sessions))
	for _, f := range feedbacks {
		bySession[f.SessionID] = append(bySession[f.SessionID], f)
	}
	out := make([]SessionFeedbackResult, 0, len(sessions))
	for _, s := range sessions {
		list := bySession[s.ID]
		if list == nil {
			list = []models.Feedback{}
		}
		out = append(out, SessionFeedbackResult{
			Session:    s,
			Statistics: Aggregate(list),
			Feedbacks:  list,
		})
	}
	return out
}
