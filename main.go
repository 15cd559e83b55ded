// Command kinship estimates the degree of relatedness between pairs of
// individuals from the IBD segments in a Germline-format match file.
// Results go to stdout or a file as JSON, or to a SQLite database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ibd-data/kinship.report/internal/mask"
	"github.com/ibd-data/kinship.report/internal/relate"
	"github.com/ibd-data/kinship.report/internal/report"
	"github.com/ibd-data/kinship.report/internal/segment"
	"github.com/ibd-data/kinship.report/internal/store"
	"github.com/ibd-data/kinship.report/internal/viz"
)

var (
	alphaFlag    = flag.Float64("alpha", 0.05, "significance level for the likelihood ratio test")
	avuncularAdj = flag.Bool("avuncular-adj", false, "apply the Li et al. (2014) adjustment for avuncular (a=2, d=3) relationships")
	autosomes    = flag.Int("c", 22, "number of autosomes")
	ciFlag       = flag.Bool("ci", false, "generate confidence intervals")
	dmax         = flag.Int("dmax", 10, "max combined number of generations to test")
	firstDegAdj  = flag.Bool("first-deg-adj", false, "include adjustments for first-degree relationships")
	haploscores  = flag.Bool("haploscores", false, "input match file carries a trailing haploscore column (discarded)")
	lambdaFlag   = flag.Float64("lambda", 13.73, "mean number of segments shared in the population")
	mergeSegs    = flag.Int64("merge-segs", -1, "merge same-chromosome segments <= this many bp apart (negative disables)")
	nomask       = flag.Bool("nomask", false, "disable genomic region masking")
	rFlag        = flag.Float64("r", 35.2548101, "expected recombination events per haploid genome per generation")
	tFlag        = flag.Float64("t", 2.5, "min segment length (cM) to include in comparisons")
	thetaFlag    = flag.Float64("theta", 3.197036753, "mean shared segment length (cM) in the population")
	userFlag     = flag.String("user", "", "filter input to pairs involving this individual")
	workersFlag  = flag.Int("workers", 0, "worker goroutines for pair estimation (0 = CPU count)")

	dbPath            = flag.String("db", "", "write results to this SQLite database")
	ofile             = flag.String("o", "", "write JSON results to this file (default stdout)")
	skipSoftDelete    = flag.Bool("skip-soft-delete", false, "assume the database is empty, don't soft-delete before inserting")
	keepInsignificant = flag.Bool("keep-insignificant", false, "keep insignificant results (d_est null)")
	insigThreshold    = flag.Float64("insig-threshold", 0, "min total cM to keep insignificant results (0 = off)")
	keepInsigBySeg    = flag.String("keep-insig-by-seg", "", "keep insignificant results with more than N segments longer than L cM, as \"N:L\"")
	chartsDir         = flag.String("charts", "", "write summary charts (segments.html, degrees.png) to this directory")
)

// runParams is the parameter snapshot stored with a database run.
type runParams struct {
	MatchFile    string  `json:"matchfile"`
	T            float64 `json:"t"`
	Theta        float64 `json:"theta"`
	Lambda       float64 `json:"lambda"`
	R            float64 `json:"r"`
	C            int     `json:"c"`
	DMax         int     `json:"dmax"`
	Alpha        float64 `json:"alpha"`
	NoMask       bool    `json:"nomask"`
	MergeSegs    int64   `json:"merge_segs"`
	FirstDegAdj  bool    `json:"first_deg_adj"`
	AvuncularAdj bool    `json:"avuncular_adj"`
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: %s [flags] <matchfile>", os.Args[0])
	}
	if *dbPath != "" && *ofile != "" {
		log.Fatal("-db and -o are mutually exclusive")
	}
	path := flag.Arg(0)

	start := time.Now()
	log.Printf("reading match file %s", path)

	tasks, err := loadPairs(path)
	if err != nil {
		log.Fatalf("failed to load match file: %v", err)
	}
	log.Printf("loaded %d pairs in %s", len(tasks), time.Since(start).Round(time.Millisecond))

	h0 := relate.NewBackground(*tFlag, *thetaFlag, *lambdaFlag)
	ha := relate.NewAncestry(*autosomes, *rFlag, h0, *firstDegAdj, *avuncularAdj, *nomask)

	results, err := relate.RunPairs(tasks, h0, ha, *dmax, *alphaFlag, *ciFlag, *workersFlag)
	if err != nil {
		log.Fatalf("estimation failed: %v", err)
	}
	log.Printf("solved %d pairs in %s", len(results), time.Since(start).Round(time.Millisecond))

	if *chartsDir != "" {
		if err := os.MkdirAll(*chartsDir, 0o755); err != nil {
			log.Fatalf("failed to create charts directory: %v", err)
		}
		if err := viz.RenderChromosomeChart(*chartsDir, results); err != nil {
			log.Fatalf("failed to render chromosome chart: %v", err)
		}
		if err := viz.RenderDegreeHistogram(*chartsDir, results); err != nil {
			log.Fatalf("failed to render degree histogram: %v", err)
		}
	}

	if *dbPath != "" {
		if err := writeDatabase(path, results); err != nil {
			log.Fatalf("failed to write database: %v", err)
		}
	} else if err := writeJSON(results); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}

	log.Printf("done in %s", time.Since(start).Round(time.Millisecond))
}

// loadPairs reads and preprocesses the match file: group by pair, merge
// split segments, mask artifact regions, and sort each pair's list by
// length ascending for the estimator.
func loadPairs(path string) ([]relate.PairTask, error) {
	segs, err := segment.ReadMatchFile(path, *haploscores)
	if err != nil {
		return nil, err
	}
	pairs := segment.GroupPairs(segs, *tFlag, *userFlag)

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tasks := make([]relate.PairTask, 0, len(keys))
	for _, key := range keys {
		list := pairs[key]
		list = segment.Merge(list, *mergeSegs)
		if !*nomask {
			list = mask.Apply(list, *tFlag)
		}
		if len(list) == 0 {
			continue
		}
		segment.SortByLength(list)
		tasks = append(tasks, relate.PairTask{Pair: key, Segs: list})
	}
	return tasks, nil
}

// keepResult decides whether an insignificant pair is retained for
// database output.
func keepResult(pr relate.PairResult, keepN, keepLen float64, bySeg bool) bool {
	if pr.Est.Reject || *keepInsignificant {
		return true
	}
	if *insigThreshold > 0 && pr.Est.TotalCM >= *insigThreshold {
		return true
	}
	if bySeg {
		count := 0
		for _, seg := range pr.Segs {
			if seg.Length > keepLen {
				count++
			}
		}
		return float64(count) > keepN
	}
	return false
}

// parseKeepBySeg parses the "-keep-insig-by-seg" value of the form "N:L".
func parseKeepBySeg(v string) (n, length float64, err error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"N:L\", got %q", v)
	}
	n, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse segment count: %v", err)
	}
	length, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse segment length: %v", err)
	}
	return n, length, nil
}

func writeDatabase(matchfile string, results []relate.PairResult) error {
	var keepN, keepLen float64
	bySeg := *keepInsigBySeg != ""
	if bySeg {
		var err error
		if keepN, keepLen, err = parseKeepBySeg(*keepInsigBySeg); err != nil {
			return err
		}
	}

	var kept []relate.PairResult
	totalSegs := 0
	for _, pr := range results {
		if keepResult(pr, keepN, keepLen, bySeg) {
			kept = append(kept, pr)
			totalSegs += len(pr.Segs)
		}
	}
	log.Printf("pushing results from %q (%d pairs, %d segments)", matchfile, len(kept), totalSegs)

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if !*skipSoftDelete {
		pairs := make([]string, len(kept))
		for i, pr := range kept {
			pairs[i] = pr.Est.Pair
		}
		if _, err := db.SoftDelete(pairs); err != nil {
			return err
		}
	}

	runID, err := db.NewRun(runParams{
		MatchFile:    matchfile,
		T:            *tFlag,
		Theta:        *thetaFlag,
		Lambda:       *lambdaFlag,
		R:            *rFlag,
		C:            *autosomes,
		DMax:         *dmax,
		Alpha:        *alphaFlag,
		NoMask:       *nomask,
		MergeSegs:    *mergeSegs,
		FirstDegAdj:  *firstDegAdj,
		AvuncularAdj: *avuncularAdj,
	})
	if err != nil {
		return err
	}
	return db.InsertResults(runID, kept)
}

func writeJSON(results []relate.PairResult) error {
	now := time.Now()
	lines := make([]report.Line, len(results))
	for i, pr := range results {
		lines[i] = report.Build(pr, now)
	}

	out := os.Stdout
	if *ofile != "" {
		f, err := os.Create(*ofile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return report.WriteJSON(out, lines)
}
