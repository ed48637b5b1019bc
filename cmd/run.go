package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/dlukin/scout-responder/internal/browser/bridge"
	"github.com/dlukin/scout-responder/internal/decision"
	"github.com/dlukin/scout-responder/internal/decision/gemini"
	"github.com/dlukin/scout-responder/internal/logger"
	"github.com/dlukin/scout-responder/internal/message"
	"github.com/dlukin/scout-responder/internal/pipeline"
	"github.com/dlukin/scout-responder/internal/scoring"
	"github.com/dlukin/scout-responder/internal/secrets"
	"github.com/dlukin/scout-responder/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultMaxCandidates = 25
	defaultStorePath     = "scout-responder.db"
	defaultStopFile      = "scout-responder.stop"
)

// CriteriaPreset is one named rubric: free-text criteria terms, per-term
// weights and the gate settings that apply to them.
type CriteriaPreset struct {
	Text          string         `mapstructure:"text"`
	Weights       map[string]int `mapstructure:"weights"`
	Threshold     float64        `mapstructure:"threshold"`
	RedFlagFloor  float64        `mapstructure:"red-flag-floor"`
	RubricVersion string         `mapstructure:"rubric-version"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scout-responder main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-send", "s", false, "actually send messages instead of stopping after the draft")
	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before sending")

	viper.BindPFlag("auto-send", runCmd.Flags().Lookup("auto-send"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting the scout-responder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		zlog.Fatal("config is required")
	}

	if config.Target == nil || config.Target.URL == "" {
		zlog.Fatal("target url is required under target.url to locate candidates")
	}

	preset, presetName, err := resolvePreset(config.Criteria)
	if err != nil {
		zlog.Fatal("resolving criteria preset", zap.Error(err))
	}

	autoSend := viper.GetBool("auto-send")

	if autoSend && cmd.Flag("auto-aprove").Value.String() == "false" {
		prompt := promptui.Select{
			Label: "Auto-send is enabled. Messages will actually be sent. Proceed?",
			Items: []string{PromptYes, PromptNo},
		}

		_, action, err := prompt.Run()
		if err != nil {
			zlog.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			zlog.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	storeCfg := config.Store
	if storeCfg == nil {
		storeCfg = &StoreConfig{}
	}
	if storeCfg.Path == "" {
		storeCfg.Path = defaultStorePath
	}
	if storeCfg.StopFile == "" {
		storeCfg.StopFile = defaultStopFile
	}

	st, err := store.Open(storeCfg.Path)
	if err != nil {
		zlog.Fatal("opening the state store", zap.Error(err))
	}
	defer st.Close()

	driver, err := newBridgeDriver(config.Bridge, zlog)
	if err != nil {
		zlog.Fatal("creating the browser bridge client", zap.Error(err))
	}
	defer driver.Close()

	oracle, err := newOracle(ctx, config.AI, zlog)
	if err != nil {
		zlog.Fatal("creating the decision oracle", zap.Error(err))
	}

	gate := decision.NewGate(
		oracle,
		scoring.NewWeightedScorer(preset.Weights),
		decision.GateConfig{
			Threshold:    preset.Threshold,
			RedFlagFloor: preset.RedFlagFloor,
		},
		zlog,
	)

	messageCfg := config.Message
	if messageCfg == nil {
		messageCfg = &MessageConfig{}
	}
	if messageCfg.Template == "" {
		zlog.Fatal("message template is required under message.template")
	}

	limits := config.Limits
	if limits == nil {
		limits = &LimitsConfig{Daily: 5, Weekly: 20, Retries: 2}
	}

	maxCandidates := config.Target.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

	events := logger.NewZapEmitter(zlog, gemini.PromptVersion, preset.RubricVersion, presetName)

	p := pipeline.New(pipeline.Deps{
		Browser:  driver,
		Oracle:   gate,
		Store:    st,
		Quota:    store.NewQuota(st, nil),
		Stop:     store.NewStopMarker(storeCfg.StopFile),
		Renderer: message.NewRenderer(messageCfg.Filler, messageCfg.BannedPhrases),
		Events:   events,
		Logger:   zlog,
	}, pipeline.Config{
		Template:    messageCfg.Template,
		DailyLimit:  limits.Daily,
		WeeklyLimit: limits.Weekly,
		AutoSend:    autoSend,
		Retries:     limits.Retries,
	})

	zlog.Info("starting the candidate run",
		zap.String("target", config.Target.URL),
		zap.String("criteria_preset", presetName),
		zap.Bool("auto_send", autoSend),
		zap.Int("max_candidates", maxCandidates),
	)

	if err := p.Run(ctx, config.Target.URL, preset.Text, maxCandidates); err != nil {
		zlog.Fatal("candidate run failed", zap.Error(err))
	}

	zlog.Info("candidate run finished")
}

// resolvePreset decodes the selected criteria preset from the raw config
// map. The presets arrive as loosely-typed YAML maps, so they go through
// mapstructure with weak typing to tolerate numeric weights written as
// strings.
func resolvePreset(cfg *CriteriaConfig) (*CriteriaPreset, string, error) {
	if cfg == nil || len(cfg.Presets) == 0 {
		return nil, "", fmt.Errorf("at least one criteria preset is required under criteria.presets")
	}

	name := strings.TrimSpace(cfg.Preset)
	if name == "" {
		return nil, "", fmt.Errorf("criteria.preset must name the preset to use")
	}

	raw, ok := cfg.Presets[name]
	if !ok {
		names := make([]string, 0, len(cfg.Presets))
		for k := range cfg.Presets {
			names = append(names, k)
		}
		return nil, "", fmt.Errorf("criteria preset %q not found, existing presets: %s", name, strings.Join(names, ", "))
	}

	var preset CriteriaPreset
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &preset,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, "", err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, "", fmt.Errorf("decoding criteria preset %q: %w", name, err)
	}

	if strings.TrimSpace(preset.Text) == "" {
		return nil, "", fmt.Errorf("criteria preset %q has no text", name)
	}

	return &preset, name, nil
}

func newBridgeDriver(cfg *BridgeConfig, zlog *zap.Logger) (*bridge.Client, error) {
	if cfg == nil {
		cfg = &BridgeConfig{}
	}

	tokenFile := strings.TrimSpace(cfg.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("bridge.token-file"))
	}

	token := ""
	if tokenFile != "" {
		loaded, err := secrets.Load(secrets.Source{
			Name: "bridge token",
			File: tokenFile,
		})
		if err != nil {
			return nil, err
		}
		token = loaded
	}

	return bridge.New(cfg.URL, token, zlog), nil
}

func newOracle(ctx context.Context, cfg *AIConfig, zlog *zap.Logger) (decision.Oracle, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required under ai.gemini")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKeyFile := strings.TrimSpace(cfg.Gemini.APIKeyFile)
	if apiKeyFile == "" {
		apiKeyFile = strings.TrimSpace(viper.GetString("ai.gemini.api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	evalLogger := zlog.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewEvaluator(generator, cfg.Gemini.MaxLogLength, evalLogger), nil
}
