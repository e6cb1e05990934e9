package cmd

import (
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/server"
)

const (
	app = "pathfinder"
)

type Config struct {
	DataFile          string            `mapstructure:"data-file"`
	TaxonomyFile      string            `mapstructure:"taxonomy-file"`
	ExcludeFile       string            `mapstructure:"exclude-file"`
	ExcludeCandidates []string          `mapstructure:"exclude-candidates"`
	DisabledFilters   map[string]string `mapstructure:"disabled-filters"`
	Scoring           matching.Config   `mapstructure:"scoring"`
	Neo4j             *Neo4jConfig      `mapstructure:"neo4j"`
	AI                *AIConfig         `mapstructure:"ai"`
	Server            server.Config     `mapstructure:"server"`
}

type Neo4jConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	URI          string `mapstructure:"uri"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password" json:"-"`
	PasswordFile string `mapstructure:"password-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "pathfinder ranks internal candidates against vacancies and explains every match",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix(strings.ToUpper(app))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	bindings := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"neo4j.password-file":    "NEO4J_PASSWORD_FILE",
		"data-file":              "PATHFINDER_DATA_FILE",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is pathfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

// getConfig decodes the merged configuration on top of the built-in scoring defaults.
func getConfig() (*Config, error) {
	config := &Config{Scoring: matching.DefaultConfig()}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if err := config.Scoring.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
