package stats

import (
	"fmt"

	"github.com/julefagdag/agenda/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// RatingBucket is the number of entries that gave one rating value.
type RatingBucket struct {
	Rating     int `json:"rating"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// RatingSummary aggregates the optional 1-5 ratings of event feedback.
type RatingSummary struct {
	Average      string         `json:"average"`
	RatedCount   int            `json:"rated_count"`
	Distribution []RatingBucket `json:"distribution"` // highest rating first
}

// Bucket returns the bucket for rating, or a zero bucket when rating is out of range.
func (r RatingSummary) Bucket(rating int) RatingBucket {
	for _, b := range r.Distribution {
		if b.Rating == rating {
			return b
		}
	}
	return RatingBucket{Rating: rating}
}

// AggregateRatings averages the ratings present in entries and counts each value.
// Entries without a rating, or with one outside 1-5, are not counted.
func AggregateRatings(entries []models.EventFeedback) RatingSummary {
	var counts [MaxRating + 1]int
	sum, rated := 0, 0
	for _, e := range entries {
		if e.Rating == nil || *e.Rating < MinRating || *e.Rating > MaxRating {
			continue
		}
		counts[*e.Rating]++
		sum += *e.Rating
		rated++
	}

	summary := RatingSummary{
		Average:      formatAverage(sum, rated),
		RatedCount:   rated,
		Distribution: make([]RatingBucket, 0, MaxRating),
	}
	for r := MaxRating; r >= MinRating; r-- {
		summary.Distribution = append(summary.Distribution, RatingBucket{
			Rating:     r,
			Count:      counts[r],
			Percentage: Percent(counts[r], rated),
		})
	}
	return summary
}

// formatAverage renders sum/count with one decimal, rounding half up.
func formatAverage(sum, count int) string {
	if count == 0 {
		return "0"
	}
	tenths := (20*sum + count) / (2 * count)
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
