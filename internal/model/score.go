package model

// Score is the aggregate mutation score across every mutant considered in
// a run: the fraction killed by at least the test it was generated
// against, out of every mutant that was not filtered as junk.
type Score struct {
	TotalMutants  int     `yaml:"total_mutants"`
	KilledMutants int     `yaml:"killed_mutants"`
	SkippedJunk   int     `yaml:"skipped_junk"`
	MutationScore float64 `yaml:"mutation_score"`
}
