// seed_forecasts.go — standalone script to parse a forecasts CSV and seed them via the Forecast API.
//
// Each CSV row is: name, bins (semicolon-separated), mass_pct, is_truth
//
//	agi-by-2040, 40;30;20;10, 100, false
//
// Usage:
//
//	go run scripts/seed_forecasts.go -file forecasts.csv -api http://localhost:8700 -client seeder
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type forecastItem struct {
	Name    string    `json:"name"`
	Bins    []float64 `json:"bins"`
	MassPct *float64  `json:"mass_pct,omitempty"`
	IsTruth bool      `json:"is_truth,omitempty"`
}

func main() {
	filePath := flag.String("file", "forecasts.csv", "path to forecasts CSV")
	apiURL := flag.String("api", "http://localhost:8700", "Forecast API base URL")
	clientID := flag.String("client", "seeder", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print forecasts without posting")
	flag.Parse()

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open %s: %v", *filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("parse %s: %v", *filePath, err)
	}

	var items []forecastItem
	for i, row := range rows {
		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		if len(row) < 2 {
			log.Printf("row %d: expected at least name and bins, got %d fields", i+1, len(row))
			continue
		}

		item := forecastItem{Name: strings.TrimSpace(row[0])}

		for _, raw := range strings.Split(row[1], ";") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				log.Printf("row %d: bad bin %q: %v", i+1, raw, err)
				item.Bins = nil
				break
			}
			item.Bins = append(item.Bins, v)
		}
		if item.Bins == nil {
			continue
		}

		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			mass, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
			if err != nil {
				log.Printf("row %d: bad mass %q: %v", i+1, row[2], err)
				continue
			}
			item.MassPct = &mass
		}

		if len(row) > 3 {
			item.IsTruth = strings.EqualFold(strings.TrimSpace(row[3]), "true")
		}

		items = append(items, item)
	}

	log.Printf("parsed %d forecasts from %s", len(items), *filePath)

	if *dryRun {
		for i, item := range items {
			massStr := "100"
			if item.MassPct != nil {
				massStr = fmt.Sprintf("%.2f", *item.MassPct)
			}
			fmt.Printf("[%d] %s (bins=%d, mass=%s, truth=%v)\n", i+1, item.Name, len(item.Bins), massStr, item.IsTruth)
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for _, item := range items {
		body, _ := json.Marshal(item)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/forecasts", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %q: %v", item.Name, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %q: %v", item.Name, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip %q: status %d", item.Name, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
