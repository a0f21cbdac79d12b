package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julefagdag/agenda/internal/models"
)

func intPtr(v int) *int { return &v }

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, FeedbackStatistics{}, Aggregate(nil))
}

func TestAggregateCountsAndRounds(t *testing.T) {
	got := Aggregate([]models.Feedback{
		{Useful: true, Learned: true},
		{Useful: true},
		{Useful: false, Explore: true},
	})

	assert.Equal(t, FeedbackStatistics{
		TotalFeedback:     3,
		UsefulCount:       2,
		LearnedCount:      1,
		ExploreCount:      1,
		UsefulPercentage:  67,
		LearnedPercentage: 33,
		ExplorePercentage: 33,
	}, got)
}

func TestPercentRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 0, Percent(3, 0))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 13, Percent(1, 8)) // 12.5
	assert.Equal(t, 38, Percent(3, 8)) // 37.5
	assert.Equal(t, 100, Percent(7, 7))

	for total := 1; total <= 40; total++ {
		for count := 0; count <= total; count++ {
			exact := 100 * float64(count) / float64(total)
			p := Percent(count, total)
			assert.LessOrEqual(t, float64(p)-0.5, exact, "count=%d total=%d", count, total)
			assert.Greater(t, float64(p)+0.5, exact, "count=%d total=%d", count, total)
		}
	}
}

func TestBuildResultsKeepsSessionOrder(t *testing.T) {
	first := models.Session{ID: uuid.New(), Title: "Velkommen"}
	second := models.Session{ID: uuid.New(), Title: "Mnemonic"}
	now := time.Date(2025, 12, 2, 15, 0, 0, 0, time.UTC)

	results := BuildResults([]models.Session{first, second}, []models.Feedback{
		{ID: uuid.New(), SessionID: second.ID, Useful: true, CreatedAt: now},
		{ID: uuid.New(), SessionID: uuid.New(), Useful: true, CreatedAt: now},
		{ID: uuid.New(), SessionID: second.ID, Learned: true, CreatedAt: now},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "Velkommen", results[0].Session.Title)
	assert.Equal(t, 0, results[0].Statistics.TotalFeedback)
	assert.NotNil(t, results[0].Feedbacks)
	assert.Equal(t, 2, results[1].Statistics.TotalFeedback)
	assert.Equal(t, 50, results[1].Statistics.UsefulPercentage)
	assert.Len(t, results[1].Feedbacks, 2)
}

func TestAggregateRatings(t *testing.T) {
	got := AggregateRatings([]models.EventFeedback{
		{Rating: intPtr(4)},
		{Rating: intPtr(5)},
		{Rating: intPtr(5)},
		{Rating: nil},
	})

	assert.Equal(t, "4.7", got.Average)
	assert.Equal(t, 3, got.RatedCount)
	require.Len(t, got.Distribution, 5)
	assert.Equal(t, 5, got.Distribution[0].Rating)
	assert.Equal(t, RatingBucket{Rating: 5, Count: 2, Percentage: 67}, got.Bucket(5))
	assert.Equal(t, RatingBucket{Rating: 4, Count: 1, Percentage: 33}, got.Bucket(4))
	for _, r := range []int{1, 2, 3} {
		assert.Equal(t, RatingBucket{Rating: r}, got.Bucket(r))
	}
}

func TestAggregateRatingsEmpty(t *testing.T) {
	got := AggregateRatings([]models.EventFeedback{{Comment: nil}})
	assert.Equal(t, "0", got.Average)
	assert.Equal(t, 0, got.RatedCount)
	for _, b := range got.Distribution {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Percentage)
	}
}

func TestFormatAverage(t *testing.T) {
	assert.Equal(t, "4.0", formatAverage(8, 2))
	assert.Equal(t, "2.5", formatAverage(5, 2))
	assert.Equal(t, "1.3", formatAverage(4, 3))
	assert.Equal(t, "3.7", formatAverage(11, 3))
}
