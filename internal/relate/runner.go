package relate

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ibd-data/kinship.report/internal/segment"
)

// Completed-pair progress is logged every progressInterval pairs.
const progressInterval = 1000

// PairTask is one pair of individuals queued for estimation, with its
// preprocessed (masked, merged, length-sorted) segment list.
type PairTask struct {
	Pair string
	Dob  *BirthYears
	Segs []*segment.SharedSegment
}

// PairResult couples an estimate with the segment list it was computed
// from, for downstream persistence and reporting.
type PairResult struct {
	Est  *Estimate
	Segs []*segment.SharedSegment
}

// RunPairs estimates every task concurrently. Pairs are independent, so
// the work fans out over a fixed pool of workers (defaulting to the CPU
// count when workers < 1); results come back in task order regardless of
// scheduling. The first estimation error aborts the run.
func RunPairs(tasks []PairTask, h0 *Background, ha *Ancestry, maxD int, alpha float64, ci bool, workers int) ([]PairResult, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	results := make([]PairResult, len(tasks))
	errs := make([]error, len(tasks))
	idx := make(chan int)

	var done atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				task := tasks[i]
				s := segment.Lengths(task.Segs)
				est, err := EstimateRelation(task.Pair, task.Dob, len(s), s, h0, ha, maxD, alpha, ci)
				if err != nil {
					errs[i] = err
				} else {
					results[i] = PairResult{Est: est, Segs: task.Segs}
				}
				if n := done.Add(1); n%progressInterval == 0 {
					log.Printf("estimated %d/%d pairs", n, len(tasks))
				}
			}
		}()
	}
	for i := range tasks {
		idx <- i
	}
	close(idx)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
