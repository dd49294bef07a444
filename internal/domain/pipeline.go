package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"crucible.dev/pkg/crucible/internal/adapter"
	"crucible.dev/pkg/crucible/internal/domain/mutators"
	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
	"crucible.dev/pkg/crucible/pkg"
)

// RunOptions configures one Pipeline.Run invocation.
type RunOptions struct {
	// Concurrency is the number of tests processed in parallel. Values
	// less than 2 run the pipeline single-threaded against the shared
	// Store directly; values of 2 or more fork a private Store per worker
	// so each worker's in-flight mutation never touches another worker's
	// IR.
	Concurrency int

	// ProgressFunc, if set, is called after every test finishes.
	ProgressFunc func(completed, total int)

	// ShardIndex and ShardTotal restrict this run to the subset of tests
	// assigned to this shard, by index modulo ShardTotal over the
	// deterministic test discovery order. ShardTotal of 0 disables
	// sharding and runs every discovered test.
	ShardIndex int
	ShardTotal int

	// ResultSpill, if set, receives each TestResult as it completes
	// instead of the pipeline holding every result in memory at once. Run
	// reads the spill back, in order, before returning. Use for test
	// suites large enough that an in-memory slice of every TestResult
	// would be wasteful.
	ResultSpill *pkg.FileSpill[model.TestResult]
}

// Pipeline is the Driver: for every discovered Test, it walks the Test's
// testees, scans every registered operator for mutation points, skips
// points the Junk Detector rejects, and for every surviving point applies
// the mutation, recompiles exactly the owning module, links an all-but-one
// object set, runs the test, records the outcome, and reverts the
// mutation before moving to the next point.
type Pipeline struct {
	store    *Store
	compiler adapter.Compiler
	linker   adapter.Linker
	runner   adapter.TestRunner
	junk     adapter.JunkDetector
}

// NewPipeline constructs a Pipeline over store, wired to the given
// adapters.
func NewPipeline(store *Store, compiler adapter.Compiler, linker adapter.Linker, runner adapter.TestRunner, junk adapter.JunkDetector) *Pipeline {
	return &Pipeline{store: store, compiler: compiler, linker: linker, runner: runner, junk: junk}
}

// Run executes the full pipeline and returns one TestResult per discovered
// test plus the total count of mutation points skipped as junk.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) ([]model.TestResult, int, error) {
	finder := NewTestFinder(p.store)
	tests := finder.FindTests()
	tests = shardTests(tests, opts.ShardIndex, opts.ShardTotal)

	var (
		results []model.TestResult
		skipped int
		err     error
	)

	if opts.Concurrency < 2 {
		results, skipped, err = p.runSequential(ctx, tests, opts)
	} else {
		results, skipped, err = p.runConcurrent(ctx, tests, opts)
	}

	if err != nil {
		return nil, 0, err
	}

	if opts.ResultSpill != nil {
		results, err = opts.ResultSpill.All()
		if err != nil {
			return nil, 0, fmt.Errorf("read back spilled results: %w", err)
		}
	}

	return results, skipped, nil
}

func (p *Pipeline) runSequential(ctx context.Context, tests []model.Test, opts RunOptions) ([]model.TestResult, int, error) {
	finder := NewTestFinder(p.store)

	var results []model.TestResult
	totalSkipped := 0

	for i, test := range tests {
		result, skipped, err := p.processTest(ctx, p.store, finder, test)
		if err != nil {
			return nil, 0, err
		}

		if opts.ResultSpill != nil {
			if err := opts.ResultSpill.Append(result); err != nil {
				return nil, 0, fmt.Errorf("spill result: %w", err)
			}
		} else {
			results = append(results, result)
		}

		totalSkipped += skipped

		if opts.ProgressFunc != nil {
			opts.ProgressFunc(i+1, len(tests))
		}
	}

	return results, totalSkipped, nil
}

func (p *Pipeline) runConcurrent(ctx context.Context, tests []model.Test, opts RunOptions) ([]model.TestResult, int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	results := make([]model.TestResult, len(tests))
	skippedPerTest := make([]int, len(tests))

	var (
		mu        sync.Mutex
		completed int
	)

	for i, test := range tests {
		i, test := i, test

		g.Go(func() error {
			workerStore := p.store.Fork()
			workerFinder := NewTestFinder(workerStore)

			result, skipped, err := p.processTest(gctx, workerStore, workerFinder, test)
			if err != nil {
				return err
			}

			if opts.ResultSpill != nil {
				if err := opts.ResultSpill.Append(result); err != nil {
					return fmt.Errorf("spill result: %w", err)
				}
			} else {
				results[i] = result
			}

			skippedPerTest[i] = skipped

			mu.Lock()
			completed++
			if opts.ProgressFunc != nil {
				opts.ProgressFunc(completed, len(tests))
			}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := 0
	for _, s := range skippedPerTest {
		total += s
	}

	return results, total, nil
}

// processTest runs the baseline and every mutant for one test against the
// given store (the shared Store for sequential runs, a private Fork for
// concurrent ones).
func (p *Pipeline) processTest(ctx context.Context, store *Store, finder *TestFinder, test model.Test) (model.TestResult, int, error) {
	baselineImg, err := p.linker.Link(store.Baselines())
	if err != nil {
		return model.TestResult{}, 0, fmt.Errorf("link baseline object set: %w", err)
	}

	baseline := p.runner.Run(ctx, test, baselineImg)

	var mutants []model.MutationOutcome
	skippedJunk := 0

	for _, testee := range finder.FindTestees(test) {
		mod, ok := store.Get(testee.ModuleHandle)
		if !ok {
			continue
		}

		for _, op := range mutators.Registry() {
			for _, point := range op.Scan(testee.ModuleHandle, testee.Function) {
				outcome, isJunk, err := p.considerPoint(ctx, store, test, mod, point)
				if err != nil {
					return model.TestResult{}, 0, err
				}

				if isJunk {
					skippedJunk++
					continue
				}

				mutants = append(mutants, outcome)
			}
		}
	}

	return model.TestResult{Name: test.Name, Baseline: baseline, Mutants: mutants}, skippedJunk, nil
}

// considerPoint runs the junk check, then (if the point survives) applies
// the mutation, recompiles the owning module, links an all-but-one object
// set against the rest of the Store's baselines, runs the test, and always
// reverts the mutation before returning — regardless of outcome, so a
// compile failure never leaves the module mutated for the next point.
func (p *Pipeline) considerPoint(ctx context.Context, store *Store, test model.Test, mod *ir.Module, point *ir.MutationPoint) (model.MutationOutcome, bool, error) {
	isJunk, err := p.junk.IsJunk(point)
	if err != nil {
		// A detector failure is never fatal: the point is treated as not
		// junk and the pipeline proceeds, per the error taxonomy.
		slog.Warn("junk detector failed, treating point as not junk", "operator", point.Operator, "function", point.FunctionName, "error", err)
		isJunk = false
	}

	if isJunk {
		slog.Debug("skipping junk mutation point", "operator", point.Operator, "function", point.FunctionName)
		return model.MutationOutcome{}, true, nil
	}

	if err := point.Apply(); err != nil {
		return model.MutationOutcome{}, false, fmt.Errorf("apply mutation point: %w", err)
	}
	defer func() { _ = point.Revert() }()

	mutantObj, compileErr := p.compiler.Compile(mod)
	if compileErr != nil {
		slog.Error("mutant compile failed", "test", test.Name, "function", point.FunctionName, "error", compileErr)

		return model.MutationOutcome{
			Operator: point.Operator,
			Location: model.LocationFrom(point.Loc),
			Result:   model.ExecutionResult{Status: model.Invalid},
		}, false, nil
	}

	objects := objectSetWithMutant(store.Baselines(), mod.Handle, mutantObj)

	img, err := p.linker.Link(objects)
	if err != nil {
		return model.MutationOutcome{}, false, fmt.Errorf("link mutant object set: %w", err)
	}

	result := p.runner.Run(ctx, test, img)

	return model.MutationOutcome{
		Operator: point.Operator,
		Location: model.LocationFrom(point.Loc),
		Result:   result,
	}, false, nil
}

// shardTests restricts tests to the subset assigned to shardIndex, by
// index modulo shardTotal over the input's deterministic order. A
// shardTotal of 0 or less disables sharding.
func shardTests(tests []model.Test, shardIndex, shardTotal int) []model.Test {
	if shardTotal <= 0 {
		return tests
	}

	var out []model.Test

	for i, t := range tests {
		if i%shardTotal == shardIndex {
			out = append(out, t)
		}
	}

	return out
}

// objectSetWithMutant returns every baseline Object except the one owned
// by mutatedHandle, plus mutant in its place. mutant is appended last so
// the Linker's last-write-wins symbol resolution lets it shadow the
// baseline definition it replaces.
func objectSetWithMutant(baselines []*model.Object, mutatedHandle ir.ModuleHandle, mutant *model.Object) []*model.Object {
	out := make([]*model.Object, 0, len(baselines)+1)

	for _, obj := range baselines {
		if obj.ModuleHandle != mutatedHandle {
			out = append(out, obj)
		}
	}

	return append(out, mutant)
}
