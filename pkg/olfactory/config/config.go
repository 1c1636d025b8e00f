package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
)

// Config is the olfactory.yaml document.
type Config struct {
	Training   Training   `yaml:"training"`
	Prediction Prediction `yaml:"prediction"`
	Embedding  Embedding  `yaml:"embedding"`
	Store      Store      `yaml:"store"`
	Extractor  Extractor  `yaml:"extractor"`
}

// Training configures the offline phase.
type Training struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	CorpusPath          string  `yaml:"corpus_path"`
	Encoding            string  `yaml:"encoding"`
}

// Prediction configures the online phase.
type Prediction struct {
	NumRandomNotes int    `yaml:"num_random_notes"`
	CategoriesPath string `yaml:"categories_path"`
	Encoding       string `yaml:"encoding"`
}

// Embedding configures the similarity oracle.
type Embedding struct {
	VectorsPath string `yaml:"vectors_path"`
	Format      string `yaml:"format"` // msgpack or text
	CacheSize   int    `yaml:"cache_size"`
}

// Store configures snapshot persistence.
type Store struct {
	Driver string `yaml:"driver"` // sqlite or msgpack
	Path   string `yaml:"path"`
}

// Extractor configures keyword extraction.
type Extractor struct {
	MaxKeywords     int      `yaml:"max_keywords"`
	Stopwords       []string `yaml:"stopwords"`
	StoplistPath    string   `yaml:"stoplist_path"`
	Entities        []string `yaml:"entities"`
	EntitiesPath    string   `yaml:"entities_path"`
	DropAdverbs     bool     `yaml:"drop_adverbs"`
	DropProperNouns bool     `yaml:"drop_proper_nouns"`
}

// Embedding formats.
const (
	FormatMsgPack = "msgpack"
	FormatText    = "text"
)

// Store drivers.
const (
	DriverSQLite  = "sqlite"
	DriverMsgPack = "msgpack"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Training: Training{
			SimilarityThreshold: 0.8,
			CorpusPath:          "training_set.csv",
			Encoding:            "latin-1",
		},
		Prediction: Prediction{
			NumRandomNotes: 3,
			CategoriesPath: "note_categories.csv",
			Encoding:       "latin-1",
		},
		Embedding: Embedding{
			VectorsPath: "vectors.msgpack",
			Format:      FormatMsgPack,
			CacheSize:   65536,
		},
		Store: Store{
			Driver: DriverSQLite,
			Path:   "olfactory.db",
		},
		Extractor: Extractor{
			MaxKeywords: 15,
			DropAdverbs: true,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if t := c.Training.SimilarityThreshold; t <= 0 || t > 1 {
		return invalid("training.similarity_threshold %v must be in (0,1]", t)
	}
	if c.Prediction.NumRandomNotes < 1 {
		return invalid("prediction.num_random_notes %d must be at least 1", c.Prediction.NumRandomNotes)
	}
	switch strings.ToLower(c.Embedding.Format) {
	case FormatMsgPack, FormatText:
	default:
		return invalid("embedding.format %q must be %s or %s", c.Embedding.Format, FormatMsgPack, FormatText)
	}
	if c.Embedding.CacheSize < 0 {
		return invalid("embedding.cache_size %d must not be negative", c.Embedding.CacheSize)
	}
	switch strings.ToLower(c.Store.Driver) {
	case DriverSQLite, DriverMsgPack:
	default:
		return invalid("store.driver %q must be %s or %s", c.Store.Driver, DriverSQLite, DriverMsgPack)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return invalid("store.path is required")
	}
	if c.Extractor.MaxKeywords < 0 {
		return invalid("extractor.max_keywords %d must not be negative", c.Extractor.MaxKeywords)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("config: %s: %w", fmt.Sprintf(format, args...), internalerr.ErrInvalidConfig)
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// LoadEntities reads a gazetteer of phrases to drop from keywords.
// Format: one entry per line, variants separated by '|', '#' starts a comment.
func LoadEntities(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var phrases []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, p := range strings.Split(line, "|") {
			if p = strings.TrimSpace(p); p != "" {
				phrases = append(phrases, p)
			}
		}
	}
	return phrases, nil
}
