package store

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ibd-data/kinship.report/internal/relate"
)

// SQLite caps the number of bound parameters; keep batched key lists well
// under the limit.
const deleteBatch = 900

// NewRun records an analysis run with its parameter snapshot and returns
// the generated run ID.
func (db *DB) NewRun(params any) (string, error) {
	runID := uuid.New().String()
	blob, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run params: %v", err)
	}
	_, err = db.Exec(`INSERT INTO analysis_runs (run_id, params_json) VALUES (?, ?)`,
		runID, string(blob))
	if err != nil {
		return "", err
	}
	return runID, nil
}

// InsertResults bulk-inserts estimates with their per-degree likelihood
// tables and segment lists, all under one transaction.
func (db *DB) InsertResults(runID string, results []relate.PairResult) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pr := range results {
		est := pr.Est
		var dEst any
		var rel1, rel2 any
		if est.Reject {
			dEst = est.D
			if est.RelEst1 != "" {
				rel1, rel2 = est.RelEst1, est.RelEst2
			}
		}
		res, err := tx.Exec(`
			INSERT INTO results (run_id, indv1, indv2, d_est, rel_est1, rel_est2, n, total_cm, max_model_p)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, est.Indiv1, est.Indiv2, dEst, rel1, rel2, len(est.S), est.TotalCM, est.P)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %v", est.Pair, err)
		}
		resultID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, alt := range est.Alts {
			if _, err := tx.Exec(`INSERT INTO likelihoods (result_id, d, ll) VALUES (?, ?, ?)`,
				resultID, alt.D, alt.LL); err != nil {
				return fmt.Errorf("failed to insert likelihood for %s: %v", est.Pair, err)
			}
		}
		for _, seg := range pr.Segs {
			if _, err := tx.Exec(`
				INSERT INTO segments (result_id, chromosome, bp_start, bp_end, length)
				VALUES (?, ?, ?, ?, ?)`,
				resultID, seg.Chrom, seg.BPStart, seg.BPEnd, seg.Length); err != nil {
				return fmt.Errorf("failed to insert segment for %s: %v", est.Pair, err)
			}
		}
	}
	return tx.Commit()
}

// SoftDelete marks existing, not-yet-deleted results for the given
// "a:b" pairs as deleted, matching either orientation of the pair.
// It returns the number of rows marked.
func (db *DB) SoftDelete(pairs []string) (int, error) {
	var keys []int64
	for _, p := range pairs {
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return 0, fmt.Errorf("malformed pair %q", p)
		}
		rows, err := db.Query(`
			SELECT id FROM results
			WHERE NOT deleted
			  AND ((indv1 = ? AND indv2 = ?) OR (indv1 = ? AND indv2 = ?))`,
			parts[0], parts[1], parts[1], parts[0])
		if err != nil {
			return 0, err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return 0, err
			}
			keys = append(keys, id)
		}
		if err := rows.Close(); err != nil {
			return 0, err
		}
	}

	marked := 0
	for start := 0; start < len(keys); start += deleteBatch {
		end := start + deleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		res, err := db.Exec(
			`UPDATE results SET deleted = 1 WHERE id IN (`+placeholders(len(batch))+`)`,
			int64Args(batch)...)
		if err != nil {
			return marked, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return marked, err
		}
		marked += int(n)
	}
	if marked > 0 {
		log.Printf("marked %d results deleted", marked)
	}
	return marked, nil
}

// DeleteCounts reports rows removed per table by HardDelete.
type DeleteCounts struct {
	Results     int
	Likelihoods int
	Segments    int
}

// HardDelete physically removes results previously soft-deleted, together
// with their likelihoods and segments.
func (db *DB) HardDelete() (DeleteCounts, error) {
	var counts DeleteCounts

	rows, err := db.Query(`SELECT id FROM results WHERE deleted`)
	if err != nil {
		return counts, err
	}
	var keys []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return counts, err
		}
		keys = append(keys, id)
	}
	if err := rows.Close(); err != nil {
		return counts, err
	}

	for start := 0; start < len(keys); start += deleteBatch {
		end := start + deleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := int64Args(keys[start:end])
		ph := placeholders(end - start)

		res, err := db.Exec(`DELETE FROM likelihoods WHERE result_id IN (`+ph+`)`, batch...)
		if err != nil {
			return counts, err
		}
		n, _ := res.RowsAffected()
		counts.Likelihoods += int(n)

		res, err = db.Exec(`DELETE FROM segments WHERE result_id IN (`+ph+`)`, batch...)
		if err != nil {
			return counts, err
		}
		n, _ = res.RowsAffected()
		counts.Segments += int(n)

		res, err = db.Exec(`DELETE FROM results WHERE id IN (`+ph+`)`, batch...)
		if err != nil {
			return counts, err
		}
		n, _ = res.RowsAffected()
		counts.Results += int(n)
	}
	return counts, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(keys []int64) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}
