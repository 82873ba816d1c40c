package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned by Set for keys the configuration does not have.
var ErrUnknownKey = errors.New("unknown config key")

// Global configuration structure.
type Global struct {
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	ChartsDir string `mapstructure:"charts_dir" yaml:"charts_dir" validate:"required"`

	// Chart rendering
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format" validate:"oneof=png svg pdf"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in" validate:"gt=0,lte=100"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in" validate:"gt=0,lte=100"`

	// Table input; an empty delimiter means "by file extension".
	Delimiter string   `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,max=3"`
	NAValues  []string `mapstructure:"na_values" yaml:"na_values"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Dir returns ~/.edakit.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".edakit"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edakit/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDAKIT")
	v.AutomaticEnv()

	for k, val := range defaults() {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, dir := range []*string{&c.DataDir, &c.ChartsDir} {
		if *dir == "" {
			continue
		}
		expanded, err := utils.ExpandHome(*dir)
		if err != nil {
			return nil, err
		}
		*dir = expanded
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func defaults() map[string]any {
	return map[string]any{
		"data_dir":        "../data",
		"charts_dir":      "charts",
		"chart_format":    "png",
		"chart_width_in":  8.0,
		"chart_height_in": 6.0,
		"delimiter":       "",
		"na_values":       []string{},
		"log_level":       "info",
		"log_format":      "text",
	}
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	d := defaults()
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and the delimiter.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParseDelimiter turns a configured delimiter into a rune. "" gives 0, and
// "tab" or `\t` give a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character: %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Set assigns a value by key and validates the result. The config is left
// unchanged when the value is rejected.
func (c *Global) Set(key, val string) error {
	next := *c
	next.NAValues = append([]string(nil), c.NAValues...)
	switch key {
	case "data_dir":
		next.DataDir = val
	case "charts_dir":
		next.ChartsDir = val
	case "chart_format":
		next.ChartFormat = strings.ToLower(val)
	case "chart_width_in", "chart_height_in":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		if key == "chart_width_in" {
			next.ChartWidthIn = f
		} else {
			next.ChartHeightIn = f
		}
	case "delimiter":
		next.Delimiter = val
	case "na_values":
		next.NAValues = nil
		for _, s := range strings.Split(val, ",") {
			next.NAValues = append(next.NAValues, strings.TrimSpace(s))
		}
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Values returns key/value pairs for display, in Keys order.
func (c *Global) Values() [][2]string {
	vals := map[string]string{
		"data_dir":        c.DataDir,
		"charts_dir":      c.ChartsDir,
		"chart_format":    c.ChartFormat,
		"chart_width_in":  strconv.FormatFloat(c.ChartWidthIn, 'f', -1, 64),
		"chart_height_in": strconv.FormatFloat(c.ChartHeightIn, 'f', -1, 64),
		"delimiter":       strconv.Quote(c.Delimiter),
		"na_values":       strings.Join(c.NAValues, ","),
		"log_level":       c.LogLevel,
		"log_format":      c.LogFormat,
	}
	out := make([][2]string, 0, len(vals))
	for _, k := range Keys() {
		out = append(out, [2]string{k, vals[k]})
	}
	return out
}
