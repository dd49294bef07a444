package main

import (
	"context"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"crucible.dev/pkg/crucible/internal/adapter"
	"crucible.dev/pkg/crucible/internal/controller"
	"crucible.dev/pkg/crucible/internal/domain"
	"crucible.dev/pkg/crucible/internal/model"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "load the configured modules, discover tests, and mutate every testee",
		RunE:  runRun,
	}

	adapter.RegisterFlags(runCmd.Flags())

	return runCmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := adapter.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := adapter.NewLogger(adapter.LogConfig{Path: logPath, Level: logLevel})

	store := domain.NewStore(adapter.NewTextModuleLoader())

	for _, path := range cfg.BitcodePaths {
		if _, err := store.Load(path); err != nil {
			return err
		}
	}

	cache, err := objectCache(cfg)
	if err != nil {
		return err
	}

	compiler := adapter.NewNativeCompiler()
	if err := store.CompileBaselines(compiler, cache); err != nil {
		return err
	}

	pipeline := domain.NewPipeline(
		store,
		compiler,
		adapter.NewLocalLinker(),
		adapter.NewLocalTestRunner(time.Duration(cfg.MutationTimeoutMillis)*time.Millisecond),
		adapter.NewCXXJunkDetector(),
	)

	ui := newUI()

	finder := domain.NewTestFinder(store)
	total := len(finder.FindTests())
	ui.Start(total)

	results, skippedJunk, err := pipeline.Run(context.Background(), domain.RunOptions{
		Concurrency: cfg.Threads,
		ShardIndex:  cfg.ShardIndex,
		ShardTotal:  cfg.ShardTotal,
		ProgressFunc: func(completed, total int) {
			ui.Update(completed, total)
		},
	})
	if err != nil {
		return err
	}

	score := domain.ComputeScore(results, skippedJunk)
	ui.Finish(score)

	logger.Info("run complete", "tests", len(results), "mutants", score.TotalMutants, "killed", score.KilledMutants, "score", score.MutationScore)

	if cfg.OutputPath == "" {
		return nil
	}

	report := &adapter.Report{Tests: results, Score: score}

	return adapter.NewYAMLReportStore().Write(cfg.OutputPath, report)
}

func objectCache(cfg *model.Config) (adapter.ObjectCache, error) {
	if cfg.NoCache || cfg.CacheDir == "" {
		return adapter.NoopObjectCache{}, nil
	}

	return adapter.NewDiskObjectCache(cfg.CacheDir)
}

func newUI() controller.UI {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return adapter.NewTUIUI()
	}

	return adapter.NewSimpleUI(os.Stdout)
}
