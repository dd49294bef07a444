package adapter

import (
	"fmt"
	"io"

	"crucible.dev/pkg/crucible/internal/model"
)

// SimpleUI prints one line per progress update. It is the fallback used
// whenever stdout is not a terminal — piped into a file or CI log, where a
// redrawing progress bar would just produce garbage.
type SimpleUI struct {
	Out io.Writer
}

// NewSimpleUI constructs a SimpleUI writing to out.
func NewSimpleUI(out io.Writer) *SimpleUI {
	return &SimpleUI{Out: out}
}

func (u *SimpleUI) Start(total int) {
	fmt.Fprintf(u.Out, "running %d tests\n", total)
}

func (u *SimpleUI) Update(completed, total int) {
	fmt.Fprintf(u.Out, "[%d/%d] tests complete\n", completed, total)
}

func (u *SimpleUI) Finish(score model.Score) {
	fmt.Fprintf(u.Out, "done: %d mutants, %d killed, %d junk skipped, score %.2f%%\n",
		score.TotalMutants, score.KilledMutants, score.SkippedJunk, score.MutationScore*100)
}
