package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "scout-responder"
)

type Config struct {
	Target   *TargetConfig   `mapstructure:"target"`
	Criteria *CriteriaConfig `mapstructure:"criteria"`
	Limits   *LimitsConfig   `mapstructure:"limits"`
	Message  *MessageConfig  `mapstructure:"message"`
	AI       *AIConfig       `mapstructure:"ai"`
	Bridge   *BridgeConfig   `mapstructure:"bridge"`
	Store    *StoreConfig    `mapstructure:"store"`
}

type TargetConfig struct {
	URL           string `mapstructure:"url"`
	MaxCandidates int    `mapstructure:"max-candidates"`
}

type CriteriaConfig struct {
	Preset  string         `mapstructure:"preset"`
	Presets map[string]any `mapstructure:"presets"`
}

type LimitsConfig struct {
	Daily   int `mapstructure:"daily"`
	Weekly  int `mapstructure:"weekly"`
	Retries int `mapstructure:"retries"`
}

type MessageConfig struct {
	Template      string   `mapstructure:"template"`
	Filler        string   `mapstructure:"filler"`
	BannedPhrases []string `mapstructure:"banned-phrases"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type BridgeConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type StoreConfig struct {
	Path     string `mapstructure:"path"`
	StopFile string `mapstructure:"stop-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scout-responder evaluates candidate profiles against criteria and sends gated outreach messages",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("bridge.token-file", "BRIDGE_TOKEN_FILE"); err != nil {
		log.Fatalf("binding BRIDGE_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scout-responder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A config file is required only for the run command. The stop command
	// reads it opportunistically and falls back to flags.
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
