package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/sightings.db", "Sightings database path")
	label := flag.String("label", "", "Only list sightings of this label")
	limit := flag.Int("limit", 20, "Number of recent sightings to list")
	prune := flag.String("prune-session", "", "Delete every sighting of this session ID")
	flag.Parse()

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("Database %s does not exist", *dbPath)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewSightingRepository(db)

	if *prune != "" {
		if err := repo.DeleteBySession(*prune); err != nil {
			log.Fatalf("Failed to prune session: %v", err)
		}
		fmt.Printf("✅ Deleted sightings of session %s\n", *prune)
		return
	}

	counts, err := repo.CountByLabel()
	if err != nil {
		log.Fatalf("Failed to count sightings: %v", err)
	}
	if len(counts) == 0 {
		fmt.Println("No sightings archived yet")
		return
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return counts[labels[i]] > counts[labels[j]] })

	fmt.Println("Sightings by label:")
	for _, l := range labels {
		fmt.Printf("  %-10s %d\n", l, counts[l])
	}

	recent, err := repo.GetRecent(&dto.SightingFilter{Label: *label, Limit: *limit})
	if err != nil {
		log.Fatalf("Failed to query sightings: %v", err)
	}

	fmt.Printf("\nMost recent %d:\n", len(recent))
	for _, s := range recent {
		fmt.Printf("  %s  %-10s %3.0f%%  session %s\n", s.SeenAt.Local().Format("2006-01-02 15:04:05"), s.Label, s.Confidence*100, s.SessionID)
	}
}
