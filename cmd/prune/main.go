// Command prune physically deletes rows previously soft-deleted from a
// kinship results database, along with their likelihoods and segments.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/ibd-data/kinship.report/internal/store"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: %s <database>", os.Args[0])
	}

	db, err := store.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	counts, err := db.HardDelete()
	if err != nil {
		log.Fatalf("hard delete failed: %v", err)
	}
	log.Printf("deleted %d results, %d likelihoods, %d segments",
		counts.Results, counts.Likelihoods, counts.Segments)
}
