// Seed sweeper for snakelights. On boards without a Hamiltonian cycle
// the outcome depends on food placement, so different seeds reach
// different scores. This tool runs many seeds against a live server
// and reports the best ones for baking into a configuration.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, reqBody, out interface{}) error {
	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) GetConfig(name string) (*config.RunConfig, error) {
	var cfg config.RunConfig
	if err := c.do("GET", "/api/configs/"+name, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) CreateRun(configID string, opts *sim.Options) (*service.RunInfo, error) {
	req := map[string]interface{}{
		"config_id": configID,
		"options":   opts,
	}
	var info service.RunInfo
	if err := c.do("POST", "/api/runs", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RunToEnd plays a run out completely and returns the final result.
func (c *Client) RunToEnd(runID string) (*sim.Result, error) {
	var advance service.AdvanceResult
	if err := c.do("POST", "/api/runs/"+runID+"/frames", nil, &advance); err != nil {
		return nil, err
	}
	return &advance.Result, nil
}

func (c *Client) DeleteRun(runID string) error {
	return c.do("DELETE", "/api/runs/"+runID, nil, nil)
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Base URL of the snakelights server")
	configID := flag.String("config", "default", "Configuration to sweep")
	firstSeed := flag.Int64("first-seed", 1, "First seed to try")
	count := flag.Int("count", 100, "Number of seeds to try")
	workers := flag.Int("workers", 4, "Concurrent runs")
	top := flag.Int("top", 10, "Number of best seeds to print")
	flag.Parse()

	if *count < 1 || *workers < 1 {
		fmt.Fprintln(os.Stderr, "count and workers must be positive")
		os.Exit(1)
	}

	client := NewClient(*serverURL)

	cfg, err := client.GetConfig(*configID)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configID, err)
	}

	log.Printf("Sweeping config %s: seeds %d..%d with %d workers",
		*configID, *firstSeed, *firstSeed+int64(*count)-1, *workers)

	start := time.Now()
	outcomes := sweep(client, *configID, cfg.Run, *firstSeed, *count, *workers)
	elapsed := time.Since(start)

	report(outcomes, *top)

	log.Printf("Swept %d seeds in %s (%.1f runs/sec)",
		len(outcomes), elapsed.Round(time.Millisecond),
		float64(len(outcomes))/elapsed.Seconds())
}
