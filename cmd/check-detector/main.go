package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atmello/partscan/internal/detect"
)

// Small operational check: is the inference service healthy, and what has
// the server persisted so far.
func main() {
	detectorURL := os.Getenv("DETECTOR_URL")
	if detectorURL == "" {
		detectorURL = "http://127.0.0.1:8000"
	}
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/image_history.db"
	}

	detector := detect.NewRemoteDetector(detectorURL, 0.25)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := detector.Ping(ctx); err != nil {
		fmt.Printf("Inference service at %s: UNAVAILABLE (%v)\n", detectorURL, err)
	} else {
		fmt.Printf("Inference service at %s: OK\n", detectorURL)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	var recordCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM image_records").Scan(&recordCount); err != nil {
		fmt.Println("No image_records table found (server not yet run)")
		return
	}
	fmt.Printf("History records: %d\n", recordCount)

	rows, err := db.Query("SELECT name, quantity FROM parts ORDER BY name")
	if err != nil {
		fmt.Println("No parts table found")
		return
	}
	defer rows.Close()

	fmt.Println("Inventory:")
	for rows.Next() {
		var name string
		var quantity int
		if err := rows.Scan(&name, &quantity); err != nil {
			log.Fatal("Failed to scan part:", err)
		}
		fmt.Printf("  %-30s %d\n", name, quantity)
	}
}
