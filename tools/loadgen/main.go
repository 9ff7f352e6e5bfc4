// Command loadgen drives concurrent write traffic against a running
// server to measure write latency and conflict rates under contention.
// Each worker runs create/patch/delete cycles with its own client ID;
// a share of patches deliberately reuses stale version markers so the
// conflict path gets exercised too.
//
// Usage:
//
//	loadgen -addr http://localhost:8080 -board 1 -workers 8 -duration 30s
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type options struct {
	addr      string
	boardID   int64
	workers   int
	duration  time.Duration
	staleRate float64
}

type counters struct {
	requests  atomic.Int64
	errors    atomic.Int64
	conflicts atomic.Int64
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type nodeRecord struct {
	ID        int64     `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func main() {
	var opts options
	flag.StringVar(&opts.addr, "addr", "http://localhost:8080", "server base URL")
	flag.Int64Var(&opts.boardID, "board", 1, "board to write to")
	flag.IntVar(&opts.workers, "workers", 4, "concurrent workers")
	flag.DurationVar(&opts.duration, "duration", 30*time.Second, "how long to run")
	flag.Float64Var(&opts.staleRate, "stale", 0.1, "fraction of patches sent with a stale version marker")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var stats counters
	latencies := make([][]time.Duration, opts.workers)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			latencies[id] = runWorker(ctx, &opts, id, &stats)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	report(&stats, latencies, elapsed)
}

func runWorker(ctx context.Context, opts *options, id int, stats *counters) []time.Duration {
	client := &http.Client{Timeout: 10 * time.Second}
	clientID := fmt.Sprintf("loadgen-%d", id)
	base := fmt.Sprintf("%s/api/v1/boards/%d", opts.addr, opts.boardID)
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	var observed []time.Duration

	do := func(method, path string, body any) (envelope, bool) {
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				stats.errors.Add(1)
				return envelope{}, false
			}
		}
		req, err := http.NewRequestWithContext(ctx, method, base+path, &buf)
		if err != nil {
			stats.errors.Add(1)
			return envelope{}, false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", clientID)

		begin := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				stats.errors.Add(1)
			}
			return envelope{}, false
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		observed = append(observed, time.Since(begin))
		stats.requests.Add(1)

		var env envelope
		if resp.StatusCode != http.StatusNoContent {
			if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
				stats.errors.Add(1)
				return envelope{}, false
			}
		}
		if resp.StatusCode == http.StatusConflict {
			stats.conflicts.Add(1)
			return env, false
		}
		if resp.StatusCode >= 400 {
			stats.errors.Add(1)
			return env, false
		}
		return env, true
	}

	for ctx.Err() == nil {
		env, ok := do("POST", "/nodes", map[string]any{
			"type":   "task",
			"title":  fmt.Sprintf("load %s %d", clientID, rng.Intn(1000)),
			"x":      rng.Float64() * 2000,
			"y":      rng.Float64() * 1000,
			"width":  180.0,
			"height": 90.0,
		})
		if !ok {
			continue
		}
		var node nodeRecord
		if err := json.Unmarshal(env.Data, &node); err != nil {
			stats.errors.Add(1)
			continue
		}

		version := node.UpdatedAt
		for i := 0; i < 3 && ctx.Err() == nil; i++ {
			expected := version
			if rng.Float64() < opts.staleRate {
				expected = node.UpdatedAt.Add(-time.Second)
			}
			env, ok = do("PATCH", fmt.Sprintf("/nodes/%d", node.ID), map[string]any{
				"x":                   rng.Float64() * 2000,
				"y":                   rng.Float64() * 1000,
				"expected_updated_at": expected,
			})
			if ok {
				var patched nodeRecord
				if err := json.Unmarshal(env.Data, &patched); err == nil {
					version = patched.UpdatedAt
				}
			}
		}

		do("DELETE", fmt.Sprintf("/nodes/%d", node.ID), nil)
	}
	return observed
}

func report(stats *counters, perWorker [][]time.Duration, elapsed time.Duration) {
	var all []time.Duration
	for _, w := range perWorker {
		all = append(all, w...)
	}
	if len(all) == 0 {
		log.Fatal("no requests completed")
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	pct := func(p float64) time.Duration {
		idx := int(float64(len(all)-1) * p)
		return all[idx]
	}

	total := stats.requests.Load()
	fmt.Printf("requests:  %d (%.1f/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("conflicts: %d\n", stats.conflicts.Load())
	fmt.Printf("errors:    %d\n", stats.errors.Load())
	fmt.Printf("latency:   p50=%s p95=%s p99=%s max=%s\n",
		pct(0.50), pct(0.95), pct(0.99), all[len(all)-1])
}
