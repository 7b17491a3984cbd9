package builder

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/IvanBrykalov/layercache/cache"
)

// Format names a configuration encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	// ErrUnsupportedFormat is returned for a Format other than YAML or JSON.
	ErrUnsupportedFormat = errors.New("builder: unsupported format")
	// ErrParseFailed wraps a decoding failure.
	ErrParseFailed = errors.New("builder: parse failed")
)

// Region holds the properties of one cache region.
type Region struct {
	// Eviction is one of lru (default), fifo, weak or none.
	Eviction string `koanf:"eviction"`
	// Size bounds lru and fifo eviction.
	Size int `koanf:"size"`
	// FlushInterval enables a scheduled flush when positive.
	FlushInterval time.Duration `koanf:"flush_interval"`
	// Blocking adds the blocking layer on top.
	Blocking bool `koanf:"blocking"`
	// Timeout bounds blocking lock acquisition; zero waits forever.
	Timeout time.Duration `koanf:"timeout"`
	// HardLinks sizes the strong ring of weak eviction.
	HardLinks int `koanf:"hard_links"`
	// Shards sets the shard count of the store and the lock table.
	Shards int `koanf:"shards"`
	// Stats adds hit/miss accounting.
	Stats bool `koanf:"stats"`
	// Synchronized serializes the chain below the blocking layer.
	Synchronized bool `koanf:"synchronized"`
}

// Config maps region ids to their properties.
type Config struct {
	Caches map[string]Region `koanf:"caches"`
}

// IDs returns the region ids in sorted order.
func (c Config) IDs() []string {
	ids := make([]string, 0, len(c.Caches))
	for id := range c.Caches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var knownProperties = map[string]bool{
	"eviction":       true,
	"size":           true,
	"flush_interval": true,
	"blocking":       true,
	"timeout":        true,
	"hard_links":     true,
	"shards":         true,
	"stats":          true,
	"synchronized":   true,
}

// Parse decodes data into a Config. Any property other than the Region
// fields fails with cache.ErrUnknownProperty naming the property and region.
// Region ids must not contain dots.
func Parse(data []byte, format Format) (Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	if err := checkProperties(k.Raw()); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return cfg, nil
}

func checkProperties(raw map[string]any) error {
	for top, v := range raw {
		if top != "caches" {
			return fmt.Errorf("%w: %q", cache.ErrUnknownProperty, top)
		}
		regions, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: caches must be a mapping", ErrParseFailed)
		}
		for id, props := range regions {
			m, ok := props.(map[string]any)
			if !ok {
				if props == nil {
					continue
				}
				return fmt.Errorf("%w: cache %s must be a mapping", ErrParseFailed, id)
			}
			for p := range m {
				if !knownProperties[p] {
					return fmt.Errorf("%w: %q at the cache %s", cache.ErrUnknownProperty, p, id)
				}
			}
		}
	}
	return nil
}
