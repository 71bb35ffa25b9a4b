// file: services/scoring_service_test.go
package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-typing-comp/models"
	"go-typing-comp/services"
)

// WPM is zero for anything typed in under a second
func TestWPM_SubSecondReadingsAreZero(t *testing.T) {
	assert.Equal(t, 0, services.WPM(50, 0))
	assert.Equal(t, 0, services.WPM(50, 0.5))
	assert.Equal(t, 0, services.WPM(50, 0.999))
}

// WPM is never negative and zero chars always yields zero
func TestWPM_ZeroChars(t *testing.T) {
	for _, elapsed := range []float64{0, 1, 12, 60, 600} {
		assert.Equal(t, 0, services.WPM(0, elapsed))
	}
}

// WPM matches the (chars/5)/minutes formula, rounded
func TestWPM_Formula(t *testing.T) {
	// 50 correct chars in 12s -> (50/5)/(12/60) = 50
	assert.Equal(t, 50, services.WPM(50, 12))
	// 30 correct chars in 12s -> 30
	assert.Equal(t, 30, services.WPM(30, 12))
	// 300 chars in 60s -> 60
	assert.Equal(t, 60, services.WPM(300, 60))
}

// Accuracy of an empty sample is a perfect score
func TestAccuracy_EmptySample(t *testing.T) {
	assert.Equal(t, 100, services.Accuracy(0, 0))
}

// Accuracy is the rounded correct percentage
func TestAccuracy_Formula(t *testing.T) {
	assert.Equal(t, 91, services.Accuracy(50, 55)) // 90.9 rounds up
	assert.Equal(t, 100, services.Accuracy(30, 30))
	assert.Equal(t, 50, services.Accuracy(1, 2))
	assert.Equal(t, 0, services.Accuracy(0, 10))
}

// Accuracy never exceeds 100 even if racing counters report more correct
// chars than typed chars
func TestAccuracy_ClampedAt100(t *testing.T) {
	assert.Equal(t, 100, services.Accuracy(60, 55))
}

// Ranking is a stable descending sort on WPM: ties keep their original
// order and still get distinct sequential ranks
func TestRankByWPM_StableTies(t *testing.T) {
	results := []models.RoundResult{
		{ParticipantName: "A", WPM: 50},
		{ParticipantName: "B", WPM: 70},
		{ParticipantName: "C", WPM: 70},
	}

	ranked := services.RankByWPM(results)

	assert.Equal(t, "B", ranked[0].ParticipantName)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "C", ranked[1].ParticipantName)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "A", ranked[2].ParticipantName)
	assert.Equal(t, 3, ranked[2].Rank)

	// the input slice is untouched
	assert.Equal(t, 0, results[0].Rank)
}

// Round stats ignore zero-WPM participants for the extremes but keep them in
// the accuracy average
func TestComputeRoundStats_ExcludesIdleFromExtremes(t *testing.T) {
	results := []models.RoundResult{
		{ParticipantName: "fast", WPM: 80, Accuracy: 96},
		{ParticipantName: "slow", WPM: 40, Accuracy: 88},
		{ParticipantName: "idle", WPM: 0, Accuracy: 100},
	}

	stats := services.ComputeRoundStats(results)

	assert.Equal(t, 80, stats.HighestWPM)
	assert.Equal(t, 40, stats.LowestWPM)
	assert.Equal(t, 60, stats.AverageWPM)
	assert.Equal(t, 95, stats.AverageAccuracy) // (96+88+100)/3 rounded
}

// With nobody typing, every stat is zero
func TestComputeRoundStats_NoQualifyingResults(t *testing.T) {
	stats := services.ComputeRoundStats([]models.RoundResult{
		{ParticipantName: "idle", WPM: 0, Accuracy: 100},
	})
	assert.Equal(t, 0, stats.HighestWPM)
	assert.Equal(t, 0, stats.LowestWPM)
	assert.Equal(t, 0, stats.AverageWPM)
	assert.Equal(t, 100, stats.AverageAccuracy)

	empty := services.ComputeRoundStats(nil)
	assert.Equal(t, models.RoundStats{}, empty)
}

// Final rankings average every completed round, not just the last one
func TestComputeFinalRankings_AveragesAllRounds(t *testing.T) {
	alice := &models.Participant{Name: "Alice", Scores: []models.RoundScore{
		{Round: 0, WPM: 60, Accuracy: 90, Errors: 2, Backspaces: 3},
		{Round: 1, WPM: 40, Accuracy: 100, Errors: 1, Backspaces: 0},
	}}
	bob := &models.Participant{Name: "Bob", Scores: []models.RoundScore{
		{Round: 0, WPM: 55, Accuracy: 80, Errors: 5, Backspaces: 4},
		{Round: 1, WPM: 45, Accuracy: 90, Errors: 2, Backspaces: 2},
	}}

	rankings := services.ComputeFinalRankings([]*models.Participant{alice, bob})

	assert.Len(t, rankings, 2)
	assert.Equal(t, 50, rankings[0].AverageWPM)
	assert.Equal(t, 50, rankings[1].AverageWPM)
	// both average 50: insertion order breaks the tie, Alice first
	assert.Equal(t, "Alice", rankings[0].ParticipantName)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, "Bob", rankings[1].ParticipantName)
	assert.Equal(t, 2, rankings[1].Rank)

	assert.Equal(t, 95, rankings[0].AverageAccuracy)
	assert.Equal(t, 60, rankings[0].HighestWPM)
	assert.Equal(t, 40, rankings[0].LowestWPM)
	assert.Equal(t, 3, rankings[0].TotalErrors)
	assert.Equal(t, 3, rankings[0].TotalBackspaces)
}

// A participant with no completed rounds ranks with all-zero aggregates
func TestComputeFinalRankings_NoScores(t *testing.T) {
	rankings := services.ComputeFinalRankings([]*models.Participant{
		{Name: "Lurker"},
	})
	assert.Len(t, rankings, 1)
	assert.Equal(t, 0, rankings[0].AverageWPM)
	assert.Equal(t, 0, rankings[0].TotalRoundsCompleted)
	assert.Equal(t, 1, rankings[0].Rank)
}
