package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/kirrog/news-agregator/internal/config"
	"github.com/kirrog/news-agregator/internal/feed"
	"github.com/kirrog/news-agregator/internal/logger"
	"github.com/kirrog/news-agregator/internal/metrics"
	"github.com/kirrog/news-agregator/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg.Debug)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	feeds, err := feed.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		log.Fatalf("load feeds list: %v", err)
	}

	opts := pipeline.OptionsFromConfig(cfg)
	if v := os.Getenv("SINCE_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			opts.Until = time.Now().UTC()
			opts.Since = opts.Until.Add(-time.Duration(hours) * time.Hour)
		}
	}

	driver := pipeline.New(cfg)
	records, err := driver.Fetch(context.Background(), feeds, opts)
	if err != nil {
		metrics.Global.SetError(err.Error())
		log.Fatalf("pipeline: %v", err)
	}
	logger.Info("pipeline finished", "records", len(records))

	// Serialization of the record list belongs to the consumer; emitting
	// JSON here plays that role for the CLI.
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		log.Fatalf("encode records: %v", err)
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
