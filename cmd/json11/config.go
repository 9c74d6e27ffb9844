package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/yaml.v3"

	"github.com/addrummond/json11"
)

// Config holds the parse and stringify settings. It may be loaded from a YAML
// file given by --config.file; flags set on the command line take precedence.
type Config struct {
	Quote        string `yaml:"quote"`
	QuoteNames   bool   `yaml:"quote_names"`
	BigIntSuffix bool   `yaml:"bigint_suffix"`
	LongNumerals bool   `yaml:"long_numerals"`
	MaxDepth     int    `yaml:"max_depth"`
}

func defaultConfig() Config {
	return Config{
		Quote:        "single",
		BigIntSuffix: true,
		MaxDepth:     json11.DefaultMaxDepth,
	}
}

func loadConfig(filename string) (Config, error) {
	cfg := defaultConfig()
	f, err := os.Open(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return cfg, nil
}

func quoteChar(s string) (rune, error) {
	switch s {
	case "single", "'":
		return '\'', nil
	case "double", `"`:
		return '"', nil
	}
	return 0, fmt.Errorf("unsupported quote %q, expected single or double", s)
}

func (c Config) parseOptions(logger log.Logger) *json11.ParseOptions {
	return &json11.ParseOptions{
		PreserveLongNumerals: c.LongNumerals,
		MaxDepth:             c.MaxDepth,
		Logger:               logger,
	}
}

func (c Config) stringifyOptions() (*json11.StringifyOptions, error) {
	q, err := quoteChar(c.Quote)
	if err != nil {
		return nil, err
	}
	return &json11.StringifyOptions{
		QuoteChar:        q,
		QuoteAllNames:    c.QuoteNames,
		OmitBigIntSuffix: !c.BigIntSuffix,
	}, nil
}

type globalFlags struct {
	configFile string
	logLevel   string
	cfg        Config

	quoteSet, quoteNamesSet, bigIntSuffixSet, longNumeralsSet, maxDepthSet bool
}

func (g *globalFlags) register(app *kingpin.Application) {
	def := defaultConfig()
	app.Flag("config.file", "YAML file holding default settings.").StringVar(&g.configFile)
	app.Flag("log.level", "Only log messages with the given severity or above. One of: [debug, info, warn, error]").
		Default("warn").EnumVar(&g.logLevel, "debug", "info", "warn", "error")
	app.Flag("quote", "Preferred string quote: single or double.").
		Default(def.Quote).IsSetByUser(&g.quoteSet).StringVar(&g.cfg.Quote)
	app.Flag("quote-names", "Quote every object key.").
		IsSetByUser(&g.quoteNamesSet).BoolVar(&g.cfg.QuoteNames)
	app.Flag("bigint-suffix", "Write big integers with the n suffix.").
		Default(strconv.FormatBool(def.BigIntSuffix)).IsSetByUser(&g.bigIntSuffixSet).BoolVar(&g.cfg.BigIntSuffix)
	app.Flag("long-numerals", "Keep long integer numerals exact instead of rounding them.").
		IsSetByUser(&g.longNumeralsSet).BoolVar(&g.cfg.LongNumerals)
	app.Flag("max-depth", "Maximum nesting of objects and arrays.").
		Default(strconv.Itoa(def.MaxDepth)).IsSetByUser(&g.maxDepthSet).IntVar(&g.cfg.MaxDepth)
}

// config merges the config file, if any, with the flags the user set.
func (g *globalFlags) config() (Config, error) {
	cfg := defaultConfig()
	if g.configFile != "" {
		var err error
		if cfg, err = loadConfig(g.configFile); err != nil {
			return cfg, err
		}
	}
	if g.quoteSet {
		cfg.Quote = g.cfg.Quote
	}
	if g.quoteNamesSet {
		cfg.QuoteNames = g.cfg.QuoteNames
	}
	if g.bigIntSuffixSet {
		cfg.BigIntSuffix = g.cfg.BigIntSuffix
	}
	if g.longNumeralsSet {
		cfg.LongNumerals = g.cfg.LongNumerals
	}
	if g.maxDepthSet {
		cfg.MaxDepth = g.cfg.MaxDepth
	}
	return cfg, nil
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowWarn()
	}
	return level.NewFilter(logger, opt)
}
