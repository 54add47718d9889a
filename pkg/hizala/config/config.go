package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/hizala/pkg/hizala/ingest"
	"github.com/cognicore/hizala/pkg/hizala/internalerr"
)

// Config is the on-disk configuration of an alignment run
type Config struct {
	PageBreak   string     `yaml:"page_break"`
	Workers     int        `yaml:"workers"`
	CaseLocale  string     `yaml:"case_locale"`
	Punctuation string     `yaml:"punctuation"`
	PageMatch   PageMatch  `yaml:"page_match"`
	Align       Align      `yaml:"align"`
	Fuzzy       Fuzzy      `yaml:"fuzzy"`
	Output      Output     `yaml:"output"`
	Checkpoint  Checkpoint `yaml:"checkpoint"`
}

// PageMatch configures page pairing
type PageMatch struct {
	SignatureSize int     `yaml:"signature_size"`
	Window        int     `yaml:"window"`
	MinScore      float64 `yaml:"min_score"`
	PrefixLength  int     `yaml:"prefix_length"`
}

// Align configures the token aligner's lookahead bounds
type Align struct {
	SplitMax        int `yaml:"split_max"`
	MaxSkip         int `yaml:"max_skip"`
	SkipSplitMax    int `yaml:"skip_split_max"`
	ConfirmMax      int `yaml:"confirm_max"`
	ConfirmSplitMax int `yaml:"confirm_split_max"`
	BackwardSkip    int `yaml:"backward_skip"`
}

// Fuzzy configures fuzzy prefix matching
type Fuzzy struct {
	MinLength int     `yaml:"min_length"`
	MinPrefix int     `yaml:"min_prefix"`
	MinRatio  float64 `yaml:"min_ratio"`
}

// Output configures the output table
type Output struct {
	Header *bool `yaml:"header"`
}

// Checkpoint configures resumable runs
type Checkpoint struct {
	DB string `yaml:"db"`
}

// Default returns the reference configuration
func Default() Config {
	header := true
	return Config{
		PageBreak:   ingest.DefaultPageBreak,
		Punctuation: ingest.DefaultPunctuation,
		PageMatch: PageMatch{
			SignatureSize: 3,
			Window:        4,
			MinScore:      0.5,
			PrefixLength:  3,
		},
		Align: Align{
			SplitMax:        4,
			MaxSkip:         5,
			SkipSplitMax:    3,
			ConfirmMax:      2,
			ConfirmSplitMax: 3,
			BackwardSkip:    3,
		},
		Fuzzy: Fuzzy{
			MinLength: 3,
			MinPrefix: 3,
			MinRatio:  0.5,
		},
		Output: Output{Header: &header},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// HeaderEnabled reports whether the output table starts with a header line
func (c Config) HeaderEnabled() bool {
	return c.Output.Header == nil || *c.Output.Header
}

// Validate rejects settings the engine cannot run with
func (c Config) Validate() error {
	var problems []string
	if c.PageBreak == "" {
		problems = append(problems, "page_break must not be empty")
	}
	if c.Workers < 0 {
		problems = append(problems, "workers must be >= 0")
	}
	switch strings.ToLower(c.CaseLocale) {
	case "", "tr", "az":
	default:
		problems = append(problems, fmt.Sprintf("case_locale %q is not supported", c.CaseLocale))
	}
	if c.PageMatch.SignatureSize < 1 {
		problems = append(problems, "page_match.signature_size must be >= 1")
	}
	if c.PageMatch.Window < 1 {
		problems = append(problems, "page_match.window must be >= 1")
	}
	if c.PageMatch.PrefixLength < 1 {
		problems = append(problems, "page_match.prefix_length must be >= 1")
	}
	if c.PageMatch.MinScore <= 0 {
		problems = append(problems, "page_match.min_score must be > 0")
	}
	if c.Align.SplitMax < 1 || c.Align.SkipSplitMax < 1 || c.Align.ConfirmSplitMax < 1 {
		problems = append(problems, "align split bounds must be >= 1")
	}
	if c.Align.MaxSkip < 0 || c.Align.BackwardSkip < 0 || c.Align.ConfirmMax < 0 {
		problems = append(problems, "align skip bounds must be >= 0")
	}
	if c.Fuzzy.MinLength < 1 || c.Fuzzy.MinPrefix < 1 {
		problems = append(problems, "fuzzy.min_length and fuzzy.min_prefix must be >= 1")
	}
	if c.Fuzzy.MinRatio <= 0 || c.Fuzzy.MinRatio > 1 {
		problems = append(problems, "fuzzy.min_ratio must be in (0, 1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
