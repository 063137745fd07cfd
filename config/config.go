package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bububa/careerchat/components/document"
	"github.com/bububa/careerchat/components/provider"
)

// ErrMissingAPIKey is returned when no api key is found for the llm provider
var ErrMissingAPIKey = errors.New("missing llm api key")

// Config of the careerchat application, read from environment
type Config struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"groq" validate:"oneof=openai groq anthropic cohere"`
	APIKey      string  `envconfig:"LLM_API_KEY"`
	BaseURL     string  `envconfig:"LLM_BASE_URL" validate:"omitempty,url"`
	Model       string  `envconfig:"LLM_MODEL" default:"llama3-70b-8192" validate:"required"`
	Temperature float32 `envconfig:"LLM_TEMPERATURE" default:"0" validate:"gte=0,lte=2"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"1024" validate:"gt=0"`
	MaxRounds   int     `envconfig:"MAX_ROUNDS" default:"20" validate:"gt=0"`
	// RolesFile yaml file overriding the embedded participant roles
	RolesFile string `envconfig:"ROLES_FILE" validate:"omitempty,file"`
	// DocumentRoot confines local file reads when set
	DocumentRoot string `envconfig:"DOCUMENT_ROOT" validate:"omitempty,dir"`
	// DocumentMaxWords caps words returned by the file reader, 0 means unlimited
	DocumentMaxWords int    `envconfig:"DOCUMENT_MAX_WORDS" default:"0" validate:"gte=0"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	// SearxngURL enables course search on a SearxNG instance
	SearxngURL string `envconfig:"SEARXNG_URL" validate:"omitempty,url"`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint         string `envconfig:"S3_ENDPOINT" validate:"omitempty,url"`
}

// providerEnv lists provider specific api key and base url variables
var providerEnv = map[provider.Provider][2]string{
	provider.OpenAI:    {"OPENAI_API_KEY", "OPENAI_API_BASE_URL"},
	provider.Groq:      {"GROQ_API_KEY", "GROQ_API_BASE_URL"},
	provider.Anthropic: {"ANTHROPIC_API_KEY", "ANTHROPIC_API_BASE_URL"},
	provider.Cohere:    {"COHERE_API_KEY", "COHERE_API_BASE_URL"},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the configuration and requires an llm api key
func Load(envFiles ...string) (*Config, error) {
	cfg, err := Read(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads env files, .env by default, then the environment.
// The api key is not required, use it for commands which never call the llm.
func Read(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if keys, ok := providerEnv[cfg.Provider]; ok {
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv(keys[0])
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = os.Getenv(keys[1])
		}
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w for %s", ErrMissingAPIKey, c.Provider)
	}
	return nil
}

// NewClient returns the configured llm client
func (c *Config) NewClient() (provider.Client, error) {
	opts := []provider.Option{provider.WithAPIKey(c.APIKey)}
	if c.BaseURL != "" {
		opts = append(opts, provider.WithBaseURL(c.BaseURL))
	}
	return provider.New(c.Provider, opts...)
}

// S3Config returns the s3 client configuration
func (c *Config) S3Config() document.S3Config {
	return document.S3Config{
		Region:          c.AWSRegion,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
		Endpoint:        c.S3Endpoint,
	}
}

// NewLoader returns the document loader used by the file reader
func (c *Config) NewLoader() *document.Loader {
	opts := []document.LoaderOption{document.WithS3API(document.NewS3Client(c.S3Config()))}
	if c.DocumentRoot != "" {
		opts = append(opts, document.WithRoot(c.DocumentRoot))
	}
	return document.NewLoader(opts...)
}
