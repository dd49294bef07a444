package adapter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"crucible.dev/pkg/crucible/internal/model"
)

// Report is the top-level §6 result-output document: one TestResult per
// discovered test, plus the aggregate mutation score.
type Report struct {
	Tests []model.TestResult `yaml:"tests"`
	Score model.Score        `yaml:"score"`
}

// ReportStore writes a Report to durable storage and renders a
// human-readable summary.
type ReportStore interface {
	Write(path string, report *Report) error
}

// YAMLReportStore writes the report as YAML, matching the §6 shape
// exactly.
type YAMLReportStore struct{}

// NewYAMLReportStore constructs a YAMLReportStore.
func NewYAMLReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

func (s *YAMLReportStore) Write(path string, report *Report) error {
	buf, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// PrintSummaryTable renders a one-row-per-test summary table and returns it
// as a string, counting surviving versus killed mutants per test.
func PrintSummaryTable(report *Report) string {
	var b strings.Builder

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Test", "Baseline", "Mutants", "Killed", "Survived"})

	for _, tr := range report.Tests {
		killed, survived := 0, 0
		for _, m := range tr.Mutants {
			if m.Result.Status == model.Failed {
				killed++
			} else {
				survived++
			}
		}

		table.Append([]string{
			tr.Name,
			tr.Baseline.Status.String(),
			strconv.Itoa(len(tr.Mutants)),
			strconv.Itoa(killed),
			strconv.Itoa(survived),
		})
	}

	table.Render()

	return b.String()
}
