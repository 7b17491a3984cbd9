// Command bench runs units of work against a built cache chain and exposes
// optional pprof/Prometheus endpoints. It reports how many cold keys were
// filled compared to the number of reads, which shows the blocking layer
// collapsing concurrent fills.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/IvanBrykalov/layercache/builder"
	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
	"github.com/IvanBrykalov/layercache/decorator/transactional"
	pmet "github.com/IvanBrykalov/layercache/metrics/prom"
)

const region = "bench"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "synthetic read/fill workload over a layered cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML/JSON file declaring a \"" + region + "\" region; overrides the chain flags"},
			&cli.StringFlag{Name: "eviction", Value: "lru", Usage: "eviction policy: lru | fifo | weak | none"},
			&cli.IntFlag{Name: "size", Value: 100_000, Usage: "eviction bound (entries)"},
			&cli.IntFlag{Name: "shards", Usage: "number of shards (0=auto)"},
			&cli.BoolFlag{Name: "blocking", Value: true, Usage: "add the blocking layer"},
			&cli.DurationFlag{Name: "timeout", Value: time.Second, Usage: "blocking lock timeout (0=wait forever)"},
			&cli.DurationFlag{Name: "flush", Usage: "scheduled flush interval (0=disabled)"},

			&cli.IntFlag{Name: "workers", Value: 2 * runtime.GOMAXPROCS(0), Usage: "number of worker goroutines"},
			&cli.DurationFlag{Name: "duration", Value: 10 * time.Second, Usage: "benchmark duration"},
			&cli.DurationFlag{Name: "fill", Value: time.Millisecond, Usage: "simulated cost of computing a missed value"},
			&cli.IntFlag{Name: "writes", Value: 1, Usage: "percentage of units of work that clear the region [0..100]"},
			&cli.IntFlag{Name: "keys", Value: 100_000, Usage: "keyspace size"},
			&cli.FloatFlag{Name: "zipf_s", Value: 1.1, Usage: "Zipf s > 1 (skew)"},
			&cli.FloatFlag{Name: "zipf_v", Value: 1.0, Usage: "Zipf v"},
			&cli.Int64Flag{Name: "seed", Value: time.Now().UnixNano(), Usage: "random seed"},

			&cli.StringFlag{Name: "pprof", Usage: "serve pprof at addr (e.g. :6060); empty = disabled"},
			&cli.StringFlag{Name: "http", Value: ":8080", Usage: "serve Prometheus metrics at addr"},
		},
		Action: run,
	}
}

type counters struct {
	units, hits, fills, clears, lockErrs atomic.Uint64
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// ---- pprof server (on DefaultServeMux) ----
	if addr := cmd.String("pprof"); addr != "" {
		go func() {
			logger.Info("pprof: serving", slog.String("addr", addr))
			logger.Error("pprof: stopped", slog.Any("err", http.ListenAndServe(addr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "layercache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		addr := cmd.String("http")
		logger.Info("metrics: serving", slog.String("addr", addr))
		logger.Error("metrics: stopped", slog.Any("err", http.ListenAndServe(addr, nil)))
	}()

	// ---- Build chain ----
	c, err := buildChain(cmd, logger, metrics)
	if err != nil {
		return err
	}

	// ---- Load generation ----
	workers := cmd.Int("workers")
	if workers <= 0 {
		workers = 1
	}
	keysMax := uint64(cmd.Int("keys") - 1)
	seed := cmd.Int64("seed")
	zipfS, zipfV := cmd.Float("zipf_s"), cmd.Float("zipf_v")
	fill := cmd.Duration("fill")
	writePct := cmd.Int("writes")

	var n counters
	runCtx, cancel := context.WithTimeout(ctx, cmd.Duration("duration"))
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(seed + int64(id)*9973))
			zipf := rand.NewZipf(r, zipfS, zipfV, keysMax)

			for runCtx.Err() == nil {
				wipe := int(r.Int31n(100)) < writePct
				unitOfWork(runCtx, c, cachekey.Of("row", zipf.Uint64()), wipe, fill, &n, logger)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	units := n.units.Load()
	hits := n.hits.Load()
	hitRate := 0.0
	if units > 0 {
		hitRate = float64(hits) / float64(units) * 100
	}
	fmt.Printf("workers=%d keys=%d dur=%v seed=%d\n", workers, keysMax+1, elapsed, seed)
	fmt.Printf("units=%d (%.0f units/s)  hits=%d  fills=%d  clears=%d  lock-errors=%d  hit-rate=%.2f%%\n",
		units, float64(units)/elapsed.Seconds(), hits, n.fills.Load(), n.clears.Load(), n.lockErrs.Load(), hitRate)
	fmt.Printf("Size()=%d\n", c.Size())
	return nil
}

// unitOfWork reads one key, computes it on a miss, and commits. A lock
// timeout aborts the unit instead of computing without the lock.
func unitOfWork(ctx context.Context, c cache.Cache, key *cachekey.Key, wipe bool, fill time.Duration, n *counters, logger *slog.Logger) {
	uow := transactional.NewManager(transactional.Options{Logger: logger})
	n.units.Add(1)

	v, err := uow.Get(ctx, c, key)
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) || errors.Is(err, cache.ErrLockInterrupted) {
			n.lockErrs.Add(1)
		}
		uow.Rollback(context.WithoutCancel(ctx))
		return
	}
	if v != nil {
		n.hits.Add(1)
	} else {
		time.Sleep(fill)
		n.fills.Add(1)
		_ = uow.Put(ctx, c, key, key.String())
	}
	if wipe {
		n.clears.Add(1)
		_ = uow.Clear(ctx, c)
	}
	if err := uow.Commit(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("commit failed", slog.Any("err", err))
	}
}

func buildChain(cmd *cli.Command, logger *slog.Logger, metrics *pmet.Adapter) (cache.Cache, error) {
	opts := []builder.Option{builder.WithLogger(logger), builder.WithMetrics(metrics.For)}

	var caches map[string]cache.Cache
	var err error
	if path := cmd.String("config"); path != "" {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		format := builder.FormatYAML
		if strings.HasSuffix(path, ".json") {
			format = builder.FormatJSON
		}
		caches, err = builder.Load(data, format, opts...)
	} else {
		caches, err = builder.Build(builder.Config{Caches: map[string]builder.Region{
			region: {
				Eviction:      cmd.String("eviction"),
				Size:          cmd.Int("size"),
				Shards:        cmd.Int("shards"),
				Blocking:      cmd.Bool("blocking"),
				Timeout:       cmd.Duration("timeout"),
				FlushInterval: cmd.Duration("flush"),
				Stats:         true,
			},
		}}, opts...)
	}
	if err != nil {
		return nil, err
	}
	c, ok := caches[region]
	if !ok {
		return nil, fmt.Errorf("config declares no %q cache", region)
	}
	return c, nil
}
