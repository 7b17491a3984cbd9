// Package builder assembles cache regions from properties.
//
// Each region is a decorator chain built bottom-up in a fixed order:
//
//	store -> eviction (lru | fifo | weak | none) -> scheduled -> stats -> synchronized -> blocking
//
// Properties come from a Config or from YAML/JSON via Load.
package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/decorator/blocking"
	"github.com/IvanBrykalov/layercache/decorator/stats"
	"github.com/IvanBrykalov/layercache/decorator/synchronized"
	"github.com/IvanBrykalov/layercache/policy/fifo"
	"github.com/IvanBrykalov/layercache/policy/lru"
	"github.com/IvanBrykalov/layercache/policy/scheduled"
	"github.com/IvanBrykalov/layercache/policy/weak"
)

// ErrUnknownEviction is returned for an eviction name the builder does not know.
var ErrUnknownEviction = errors.New("builder: unknown eviction policy")

// Option customizes Build and Load.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics func(id string) cache.Metrics
	clock   cache.Clock
	store   func(id string) cache.Cache
}

// WithLogger sets the logger handed to every layer that logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics supplies a Metrics sink per region id.
func WithMetrics(fn func(id string) cache.Metrics) Option {
	return func(o *options) { o.metrics = fn }
}

// WithClock sets the clock of scheduled flushes.
func WithClock(c cache.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStore replaces the in-memory store with a custom one. A custom store is
// always wrapped in a synchronized layer since it may not be safe for
// concurrent use.
func WithStore(fn func(id string) cache.Cache) Option {
	return func(o *options) { o.store = fn }
}

// Load parses data and builds every region it declares.
func Load(data []byte, format Format, opts ...Option) (map[string]cache.Cache, error) {
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return Build(cfg, opts...)
}

// Build assembles one chain per region in cfg.
func Build(cfg Config, opts ...Option) (map[string]cache.Cache, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	out := make(map[string]cache.Cache, len(cfg.Caches))
	for _, id := range cfg.IDs() {
		c, err := buildRegion(id, cfg.Caches[id], o)
		if err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, nil
}

func buildRegion(id string, r Region, o options) (cache.Cache, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty cache id", cache.ErrUnknownProperty)
	}
	var m cache.Metrics
	if o.metrics != nil {
		m = o.metrics(id)
	}

	var c cache.Cache
	custom := o.store != nil
	if custom {
		c = o.store(id)
	} else {
		c = cache.NewMemory(id, cache.MemoryOptions{Shards: r.Shards})
	}
	layers := []string{"store"}

	eviction := strings.ToLower(strings.TrimSpace(r.Eviction))
	switch eviction {
	case "", "lru":
		eviction = "lru"
		c = lru.New(c, lru.Options{Size: r.Size, Metrics: m})
	case "fifo":
		c = fifo.New(c, fifo.Options{Size: r.Size, Metrics: m})
	case "weak":
		c = weak.New(c, weak.Options{HardLinks: r.HardLinks, Metrics: m})
	case "none":
	default:
		return nil, fmt.Errorf("%w: %q at the cache %s", ErrUnknownEviction, r.Eviction, id)
	}
	layers = append(layers, eviction)

	if r.FlushInterval > 0 {
		c = scheduled.New(c, scheduled.Options{Interval: r.FlushInterval, Clock: o.clock, Metrics: m})
		layers = append(layers, "scheduled")
	}
	if r.Stats {
		c = stats.New(c, stats.Options{Logger: o.logger, Metrics: m})
		layers = append(layers, "stats")
	}
	if r.Synchronized || custom {
		c = synchronized.New(c)
		layers = append(layers, "synchronized")
	}
	if r.Blocking {
		c = blocking.New(c, blocking.Options{Timeout: r.Timeout, Shards: r.Shards, Logger: o.logger})
		layers = append(layers, "blocking")
	}

	o.logger.Info("cache region built",
		slog.String("cache", id),
		slog.String("chain", strings.Join(layers, " -> ")))
	return c, nil
}
