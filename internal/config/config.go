package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the reconstruction backend.
type Config struct {
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Cache         CacheConfig         `yaml:"cache"`
}

type ElasticsearchConfig struct {
	Addresses     []string `yaml:"addresses"`
	SpanIndexName string   `yaml:"span_index_name"`
}

// CacheConfig sizes the ristretto memoization cache.
type CacheConfig struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"`
	BufferItems int64 `yaml:"buffer_items"`
}

// Default returns the baseline configuration with safe defaults.
func Default() Config {
	return Config{
		Elasticsearch: ElasticsearchConfig{
			Addresses:     []string{"http://localhost:9200"},
			SpanIndexName: "junjo_span_index",
		},
		Cache: CacheConfig{
			NumCounters: 1e6,
			MaxCost:     1 << 26,
			BufferItems: 64,
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing path yields defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ELASTICSEARCH_ADDRESSES"); v != "" {
		cfg.Elasticsearch.Addresses = strings.Split(v, ",")
	}
	if v := os.Getenv("SPAN_INDEX_NAME"); v != "" {
		cfg.Elasticsearch.SpanIndexName = v
	}
}
