package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"locale-uploader/internal/filewalker"
	"locale-uploader/internal/parser"
	"locale-uploader/internal/textutil"
	"locale-uploader/internal/upload"
)

// EnvPrefix prefixes the environment variables read for every flag.
const EnvPrefix = "CF"

type Config struct {
	APIKey         string   `mapstructure:"key"`
	ProjectID      string   `mapstructure:"id"`
	Language       string   `mapstructure:"lang"`
	MissingPhrases string   `mapstructure:"missing"`
	Namespace      string   `mapstructure:"namespace"`
	Excludes       []string `mapstructure:"-"`
	Pattern        string   `mapstructure:"pattern"`
	Table          string   `mapstructure:"table" validate:"required,lua_ident"`
	Extension      string   `mapstructure:"ext" validate:"required,alphanum"`
	Strategy       string   `mapstructure:"strategy" validate:"required"`
	Root           string   `mapstructure:"root" validate:"required"`
	Workers        int      `mapstructure:"workers" validate:"min=1"`
	DryRun         bool     `mapstructure:"dry"`
	Verbose        bool     `mapstructure:"verbose"`
}

// RegisterFlags declares every configuration flag on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("key", "k", "", "API key or path to a file containing it (env CF_API_KEY)")
	flags.StringP("id", "i", "", "project ID, read from X-Curse-Project-ID in *.toc files when omitted")
	flags.StringP("lang", "l", upload.Languages[0], "base language of strings, one of: "+strings.Join(upload.Languages, ", "))
	flags.StringP("missing", "m", upload.MissingPhraseHandlers[0], "how to handle missing phrases, one of: "+strings.Join(upload.MissingPhraseHandlers, ", "))
	flags.StringP("namespace", "n", "", "namespace to upload to")
	flags.StringArrayP("exclude", "e", nil, "glob of files or directories to ignore, may be repeated or newline-separated")
	flags.StringP("pattern", "p", "", "regular expression used to find strings (group 1 key, group 2 value)")
	flags.BoolP("dry", "d", false, "dry run, print strings instead of uploading")
	flags.String("table", parser.DefaultTable, "identifier of the localization table")
	flags.String("ext", filewalker.DefaultExtension, "extension of the source files to scan")
	flags.String("strategy", string(parser.StrategyPattern), "extraction strategy: pattern or structural")
	flags.String("root", ".", "directory to scan")
	flags.Int("workers", 8, "number of files parsed in parallel (env WORKER_COUNT)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
}

// Load merges flags, environment and defaults into a validated Config.
// A .env file in the working directory is loaded first when present.
func Load(fs afero.Fs, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("key", "CF_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("workers", "CF_WORKERS", "WORKER_COUNT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	excludes, err := flags.GetStringArray("exclude")
	if err != nil {
		return nil, fmt.Errorf("read exclude flag: %w", err)
	}
	cfg.Excludes = excludes
	cfg.Extension = strings.TrimPrefix(cfg.Extension, ".")

	key, err := resolveAPIKey(fs, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveAPIKey reads the key from a file when value names one.
func resolveAPIKey(fs afero.Fs, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	info, err := fs.Stat(value)
	if err != nil || info.IsDir() {
		return value, nil
	}
	data, err := afero.ReadFile(fs, value)
	if err != nil {
		return "", fmt.Errorf("read API key file %s: %w", value, err)
	}
	return textutil.FirstLine(string(data)), nil
}

var luaIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("lua_ident", func(fl validator.FieldLevel) bool {
		return luaIdent.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register lua_ident validation: %v", err))
	}
	return v
}

// Validate checks the core settings. Upload metadata is validated by the
// upload package when it is built.
func (c *Config) Validate() error {
	if _, err := parser.ParseStrategy(c.Strategy); err != nil {
		return err
	}

	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if err == nil || !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s %q (%s)", strings.ToLower(e.Field()), fmt.Sprint(e.Value()), e.ActualTag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
