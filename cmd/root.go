package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/ai"
	"github.com/spigell/team-builder/internal/ai/gemini"
	"github.com/spigell/team-builder/internal/ai/ollama"
	"github.com/spigell/team-builder/internal/builder"
	"github.com/spigell/team-builder/internal/logger"
	"github.com/spigell/team-builder/internal/roles"
	"github.com/spigell/team-builder/internal/salary"
	"github.com/spigell/team-builder/internal/secrets"
	"github.com/spigell/team-builder/internal/server"
	"github.com/spigell/team-builder/internal/webpage"
)

const (
	app       = "team-builder"
	envPrefix = "TEAM_BUILDER"

	providerGemini = "gemini"
	providerOllama = "ollama"

	extractorSection = "section"
	extractorMarker  = "marker"
)

type Config struct {
	Provider     string         `mapstructure:"provider" validate:"oneof=gemini ollama"`
	MaxLogLength int            `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       *GeminiConfig  `mapstructure:"gemini" validate:"required"`
	Ollama       *OllamaConfig  `mapstructure:"ollama" validate:"required"`
	Salary       *SalaryConfig  `mapstructure:"salary" validate:"required"`
	Fetch        *FetchConfig   `mapstructure:"fetch" validate:"required"`
	Export       *ExportConfig  `mapstructure:"export" validate:"required"`
	Server       *server.Config `mapstructure:"server" validate:"required"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model" validate:"required"`
	MaxRetries int    `mapstructure:"max-retries" validate:"gte=0"`
}

type OllamaConfig struct {
	URL   string `mapstructure:"url" validate:"omitempty,url"`
	Model string `mapstructure:"model" validate:"required"`
}

type SalaryConfig struct {
	MaxAttempts int           `mapstructure:"max-attempts" validate:"gte=1"`
	Ceiling     int           `mapstructure:"ceiling" validate:"gte=1"`
	Backoff     time.Duration `mapstructure:"backoff" validate:"gte=0"`
	MaxBackoff  time.Duration `mapstructure:"max-backoff" validate:"gte=0"`
}

type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user-agent"`
	Extractor string        `mapstructure:"extractor" validate:"oneof=section marker"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "team-builder suggests job roles for your company and estimates offshore hiring savings",
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	bindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE")
	bindEnv("gemini.api-key", "GEMINI_API_KEY")

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is team-builder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("provider", "", "chat model provider: gemini or ollama")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, envPrefix+"_"+envKey(key), env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func viperBindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		log.Fatalf("binding %s flag: %v", key, err)
	}
}

func envKey(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func setDefaults() {
	viper.SetDefault("provider", providerGemini)
	viper.SetDefault("max-log-length", 200)

	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.max-retries", 3)

	viper.SetDefault("ollama.url", "")
	viper.SetDefault("ollama.model", "llama3.1")

	viper.SetDefault("salary.max-attempts", salary.DefaultMaxAttempts)
	viper.SetDefault("salary.ceiling", salary.DefaultCeiling)
	viper.SetDefault("salary.backoff", salary.DefaultBackoff)
	viper.SetDefault("salary.max-backoff", salary.DefaultMaxBackoff)

	viper.SetDefault("fetch.timeout", webpage.DefaultTimeout)
	viper.SetDefault("fetch.user-agent", webpage.DefaultUserAgent)
	viper.SetDefault("fetch.extractor", extractorSection)

	viper.SetDefault("export.dir", ".")

	viper.SetDefault("server.listen", server.DefaultListen)
	viper.SetDefault("server.session-ttl", server.DefaultSessionTTL)
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was asked for explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	config.Provider = strings.ToLower(strings.TrimSpace(config.Provider))
	if config.Server != nil {
		config.Server.Debug = viper.GetBool("debug")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// setup builds the logger and config shared by all commands that talk to a
// chat model.
func setup() (*Config, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting with config",
		zap.String("provider", config.Provider),
		zap.Int("salary_max_attempts", config.Salary.MaxAttempts),
		zap.Int("salary_ceiling", config.Salary.Ceiling),
		zap.String("fetch_extractor", config.Fetch.Extractor),
	)

	return config, logger
}

func newChat(ctx context.Context, cfg *Config, log *zap.Logger) (ai.Chat, error) {
	switch cfg.Provider {
	case providerOllama:
		return ollama.New(cfg.Ollama.URL, cfg.Ollama.Model, cfg.MaxLogLength, log)
	case providerGemini, "":
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		}

		return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, cfg.MaxLogLength, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newExtractor(name string) webpage.AboutExtractor {
	if name == extractorMarker {
		return webpage.MarkerExtractor{}
	}
	return webpage.SectionExtractor{}
}

func newBuilder(ctx context.Context, cfg *Config, log *zap.Logger) (*builder.Builder, error) {
	chat, err := newChat(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("building chat client: %w", err)
	}

	fetcher := webpage.NewClient(cfg.Fetch.Timeout, log)
	if cfg.Fetch.UserAgent != "" {
		fetcher.UserAgent = cfg.Fetch.UserAgent
	}

	pipeline := roles.New(chat,
		roles.WithLogger(log),
		roles.WithMaxLogLength(cfg.MaxLogLength),
	)

	estimator := salary.NewEstimator(chat, log,
		salary.WithMaxAttempts(cfg.Salary.MaxAttempts),
		salary.WithCeiling(cfg.Salary.Ceiling),
		salary.WithBackoff(cfg.Salary.Backoff, cfg.Salary.MaxBackoff),
		salary.WithMaxLogLength(cfg.MaxLogLength),
	)

	resolver := webpage.NewResolver(fetcher, newExtractor(cfg.Fetch.Extractor), log)

	return builder.New(resolver, pipeline, estimator, log), nil
}
