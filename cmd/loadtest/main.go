package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

type generateRequest struct {
	Interests []Interest        `json:"interests"`
	APIKeys   map[string]string `json:"apiKeys,omitempty"`
}

type result struct {
	Sample string `json:"sample"`
	Items  int    `json:"items"`
	Run    int    `json:"run"`
	Model  string `json:"model,omitempty"`
	WallMs int64  `json:"wall_ms"`
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

func main() {
	url := flag.String("url", "http://localhost:8090", "API base URL")
	endpoint := flag.String("endpoint", "roast", "roast or compliment")
	runs := flag.Int("runs", 3, "Number of runs per sample")
	keys := flag.String("keys", "", "Caller keys as provider=secret pairs, comma separated")
	jsonOut := flag.String("json", "", "Write results to JSON file (e.g. results.json)")
	flag.Parse()

	if *endpoint != "roast" && *endpoint != "compliment" {
		fmt.Fprintf(os.Stderr, "unknown endpoint %q\n", *endpoint)
		os.Exit(2)
	}

	baseURL := strings.TrimRight(*url, "/")
	client := &http.Client{Timeout: 180 * time.Second}
	apiKeys := parseKeys(*keys)

	fmt.Printf("Load testing %s/api/%s (%d runs per sample)\n", baseURL, *endpoint, *runs)

	var results []result
	var failures int
	for _, sample := range Samples {
		for run := 1; run <= *runs; run++ {
			fmt.Printf("  Running %s (run %d/%d)...", sample.Name, run, *runs)
			r := generate(client, baseURL, *endpoint, apiKeys, sample, run)
			results = append(results, r)
			switch {
			case r.Status == http.StatusTooManyRequests:
				fmt.Println(" QUOTA EXHAUSTED")
				failures++
			case r.Error != "":
				fmt.Printf(" FAILED (%s)\n", r.Error)
				failures++
			default:
				fmt.Printf(" %dms via %s\n", r.WallMs, r.Model)
			}
		}
	}

	fmt.Println()
	printTable(results)
	printSummary(results)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, results, baseURL, *endpoint); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
		} else {
			fmt.Printf("\nResults written to %s\n", *jsonOut)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func parseKeys(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		name, secret, ok := strings.Cut(pair, "=")
		if ok {
			out[strings.TrimSpace(name)] = strings.TrimSpace(secret)
		}
	}
	return out
}

func generate(client *http.Client, baseURL, endpoint string, apiKeys map[string]string, sample Sample, run int) result {
	r := result{Sample: sample.Name, Items: len(sample.Interests), Run: run}

	payload, _ := json.Marshal(generateRequest{Interests: sample.Interests, APIKeys: apiKeys})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/"+endpoint, strings.NewReader(string(payload)))
	if err != nil {
		r.Error = err.Error()
		return r
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	r.WallMs = time.Since(start).Milliseconds()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	defer resp.Body.Close()
	r.Status = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return r
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.Error = err.Error()
		return r
	}
	// roast reports the model under "_model", compliment under "model"
	for _, field := range []string{"_model", "model"} {
		if m, ok := body[field].(string); ok {
			r.Model = m
			break
		}
	}
	return r
}

func printTable(results []result) {
	fmt.Println("| Sample | Items | Run | Model | Wall (ms) |")
	fmt.Println("|--------|-------|-----|-------|-----------|")
	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("| %-7s | %5d | %d | %-20s | %9s |\n", r.Sample, r.Items, r.Run, "-", "FAIL")
			continue
		}
		fmt.Printf("| %-7s | %5d | %d | %-20s | %9d |\n", r.Sample, r.Items, r.Run, r.Model, r.WallMs)
	}
}

func printSummary(results []result) {
	var ok []result
	for _, r := range results {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		fmt.Printf("\nSummary: all %d runs failed\n", len(results))
		return
	}

	spread := make(map[string]int)
	latencies := make([]int64, 0, len(ok))
	for _, r := range ok {
		spread[r.Model]++
		latencies = append(latencies, r.WallMs)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Printf("\nSummary:\n")
	fmt.Printf("- p50 wall: %dms\n", percentile(latencies, 50))
	fmt.Printf("- p95 wall: %dms\n", percentile(latencies, 95))
	fmt.Printf("- Max wall: %dms\n", latencies[len(latencies)-1])
	fmt.Printf("- Total runs: %d (%d ok, %d failed)\n", len(results), len(ok), len(results)-len(ok))

	models := make([]string, 0, len(spread))
	for m := range spread {
		models = append(models, m)
	}
	sort.Strings(models)
	fmt.Println("- Provider spread:")
	for _, m := range models {
		fmt.Printf("    %-24s %3d (%.0f%%)\n", m, spread[m], 100*float64(spread[m])/float64(len(ok)))
	}
}

// percentile expects sorted input.
func percentile(sorted []int64, p int) int64 {
	idx := (len(sorted)*p + 99) / 100
	if idx < 1 {
		idx = 1
	}
	return sorted[idx-1]
}

type jsonReport struct {
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Endpoint  string   `json:"endpoint"`
	Results   []result `json:"results"`
}

func writeJSON(path string, results []result, baseURL, endpoint string) error {
	report := jsonReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       baseURL,
		Endpoint:  endpoint,
		Results:   results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
