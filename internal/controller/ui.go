// Package controller declares the interface the cmd package drives for
// progress reporting.
package controller

import "crucible.dev/pkg/crucible/internal/model"

// UI reports pipeline progress to the operator. Start is called once with
// the total test count, Update after each test finishes, and Finish once
// with the final aggregate score.
type UI interface {
	Start(total int)
	Update(completed, total int)
	Finish(score model.Score)
}
