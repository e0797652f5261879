package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/psantana5/timeprofile/pkg/profiler"
)

var (
	stressWriters    int
	stressIterations int
	stressRate       float64
	stressWork       time.Duration
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Generate synthetic concurrent measurements",
	Long: `Stress fans out concurrent writers that each run measurements against
the shared result file. Useful for verifying lock behavior and write
throughput on a target filesystem before instrumenting real workloads.

Example:
  timeprofile stress --writers 8 --iterations 50
  timeprofile stress --writers 32 --rate 100 --work 5ms`,
	RunE: runStress,
}

func init() {
	rootCmd.AddCommand(stressCmd)

	stressCmd.Flags().IntVar(&stressWriters, "writers", 8, "concurrent writers")
	stressCmd.Flags().IntVar(&stressIterations, "iterations", 25, "measurements per writer")
	stressCmd.Flags().Float64Var(&stressRate, "rate", 0, "global measurements per second (0 = unpaced)")
	stressCmd.Flags().DurationVar(&stressWork, "work", time.Millisecond, "simulated work per measurement")
}

func runStress(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()[:8]
	fmt.Printf("Stress run %s: %d writers x %d iterations -> %s\n",
		runID, stressWriters, stressIterations, GetResultPath())

	var limiter *rate.Limiter
	if stressRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(stressRate), stressWriters)
	}

	cfg := profiler.DefaultConfig()
	cfg.ResultPath = GetResultPath()
	cfg.Timeout = lockTimeout

	start := time.Now()
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0

	for w := 0; w < stressWriters; w++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()
			for i := 0; i < stressIterations; i++ {
				if limiter != nil {
					if err := limiter.Wait(context.Background()); err != nil {
						mu.Lock()
						failures++
						mu.Unlock()
						continue
					}
				}
				id := fmt.Sprintf("stress-%s-w%d-i%d", runID, writer, i)
				err := profiler.Do(id, cfg, func() error {
					time.Sleep(stressWork)
					return nil
				})
				if err != nil {
					mu.Lock()
					failures++
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	total := stressWriters * stressIterations
	elapsed := time.Since(start)
	fmt.Printf("Done: %d measurements in %s (%.1f/s), %d failures\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), failures)

	counters := profiler.Counters()
	fmt.Printf("Writer outcomes: written=%d dropped=%d lock_timeouts=%d\n",
		counters["rows_written"], counters["rows_dropped"], counters["lock_timeouts"])

	if failures > 0 {
		return fmt.Errorf("%d measurements failed", failures)
	}
	return nil
}
