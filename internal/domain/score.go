package domain

import "crucible.dev/pkg/crucible/internal/model"

// ComputeScore derives the aggregate mutation score from a completed run's
// TestResults: killed mutants over every mutant that was not filtered as
// junk, across every test.
func ComputeScore(results []model.TestResult, skippedJunk int) model.Score {
	s := model.Score{SkippedJunk: skippedJunk}

	for _, tr := range results {
		for _, m := range tr.Mutants {
			s.TotalMutants++
			if m.Result.Status == model.Failed {
				s.KilledMutants++
			}
		}
	}

	if s.TotalMutants > 0 {
		s.MutationScore = float64(s.KilledMutants) / float64(s.TotalMutants)
	}

	return s
}
