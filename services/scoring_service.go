// Package services: services/scoring_service.go
// Pure scoring computations for the competition core. Nothing in this file
// holds state; callers pass raw counters in and get rounded integers back.
package services

import (
	"math"
	"sort"

	"go-typing-comp/models"
)

// WPM converts a correct-character count and elapsed time into rounded
// words-per-minute (one word = five characters). Readings under one second
// return 0 to guard against inflated early values.
func WPM(correctChars int, elapsedSeconds float64) int {
	if elapsedSeconds < 1 {
		return 0
	}
	return int(math.Round((float64(correctChars) / 5.0) / (elapsedSeconds / 60.0)))
}

// Accuracy is the rounded percentage of typed characters that were correct.
// An empty sample counts as 100. The result is clamped to 100 so a racing
// client counter can never report an impossible value.
func Accuracy(correctChars, totalChars int) int {
	if totalChars == 0 {
		return 100
	}
	acc := int(math.Round(float64(correctChars) / float64(totalChars) * 100))
	if acc > 100 {
		acc = 100
	}
	return acc
}

// RankByWPM sorts results descending by WPM with a stable sort and assigns
// 1-based ranks in sorted order. Ties keep their original relative order and
// still receive distinct sequential ranks.
func RankByWPM(results []models.RoundResult) []models.RoundResult {
	ranked := make([]models.RoundResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WPM > ranked[j].WPM
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// ComputeRoundStats aggregates a round's results. Highest/lowest WPM are
// taken only over participants who actually typed (WPM > 0); the averages are
// integer-rounded means. With no qualifying results every stat is 0.
func ComputeRoundStats(results []models.RoundResult) models.RoundStats {
	var stats models.RoundStats

	var wpmValues []int
	for _, r := range results {
		if r.WPM > 0 {
			wpmValues = append(wpmValues, r.WPM)
		}
	}
	if len(wpmValues) > 0 {
		highest, lowest, sum := wpmValues[0], wpmValues[0], 0
		for _, w := range wpmValues {
			if w > highest {
				highest = w
			}
			if w < lowest {
				lowest = w
			}
			sum += w
		}
		stats.HighestWPM = highest
		stats.LowestWPM = lowest
		stats.AverageWPM = roundedMean(sum, len(wpmValues))
	}

	if len(results) > 0 {
		accSum := 0
		for _, r := range results {
			accSum += r.Accuracy
		}
		stats.AverageAccuracy = roundedMean(accSum, len(results))
	}
	return stats
}

// ComputeFinalRankings averages each participant's completed-round scores and
// ranks everyone descending by average WPM. Ties keep insertion order and get
// distinct sequential ranks, same as per-round ranking.
func ComputeFinalRankings(participants []*models.Participant) []models.FinalRanking {
	rankings := make([]models.FinalRanking, 0, len(participants))
	for _, p := range participants {
		rankings = append(rankings, summarizeParticipant(p))
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].AverageWPM > rankings[j].AverageWPM
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}

// summarizeParticipant folds one participant's score history into a single
// unranked FinalRanking row.
func summarizeParticipant(p *models.Participant) models.FinalRanking {
	ranking := models.FinalRanking{
		ParticipantName:      p.Name,
		TotalRoundsCompleted: len(p.Scores),
		RoundScores:          p.Scores,
	}
	if len(p.Scores) == 0 {
		return ranking
	}

	wpmSum, accSum := 0, 0
	highest, lowest := p.Scores[0].WPM, p.Scores[0].WPM
	for _, s := range p.Scores {
		wpmSum += s.WPM
		accSum += s.Accuracy
		if s.WPM > highest {
			highest = s.WPM
		}
		if s.WPM < lowest {
			lowest = s.WPM
		}
		ranking.TotalErrors += s.Errors
		ranking.TotalBackspaces += s.Backspaces
	}
	ranking.AverageWPM = roundedMean(wpmSum, len(p.Scores))
	ranking.AverageAccuracy = roundedMean(accSum, len(p.Scores))
	ranking.HighestWPM = highest
	ranking.LowestWPM = lowest
	return ranking
}

func roundedMean(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
