package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/claimsift/internal/model"
)

// registerDefaults makes every config key known to v so that environment
// variables reach Unmarshal even when no file mentions the key
func registerDefaults(v *viper.Viper) {
	data, err := marshalConfig(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)
	v.SetDefault("chunking.separators", model.DefaultSeparators())
	// omitempty keeps the key out of the marshaled defaults
	v.SetDefault("llm.api_key", "")
}

// marshalConfig renders cfg as YAML with the chunking separators written as
// double-quoted scalars. yaml.v3 emits newline-only strings as block scalars
// it cannot read back, which turns "\n\n" into "\n".
func marshalConfig(cfg *model.Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return data, nil
	}

	seps := mappingValue(mappingValue(doc.Content[0], "chunking"), "separators")
	if seps == nil {
		return data, nil
	}
	seps.Kind = yaml.SequenceNode
	seps.Tag = "!!seq"
	seps.Style = yaml.FlowStyle
	seps.Content = nil
	for _, sep := range cfg.Chunking.Separators {
		seps.Content = append(seps.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: sep,
			Style: yaml.DoubleQuotedStyle,
		})
	}
	return yaml.Marshal(&doc)
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok {
			setDefaults(v, full, sub)
			continue
		}
		v.SetDefault(full, value)
	}
}

// loadConfig builds the effective configuration: flags, then CLAIMSIFT_*
// environment variables, then the config file, then defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Input.Path == "" {
		cfg.Input.Path = model.DefaultInputPath
	}
	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = "."
	}
	if len(cfg.Chunking.Separators) == 0 {
		cfg.Chunking.Separators = model.DefaultSeparators()
	}
	applyProviderEnv(&cfg.LLM)

	return cfg, nil
}

// applyProviderEnv fills credentials and endpoints from the variables each
// provider's own tooling uses
func applyProviderEnv(llm *model.LLMConfig) {
	switch llm.Provider {
	case "openai":
		if llm.APIKey == "" {
			llm.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if llm.APIKey == "" {
			llm.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if llm.BaseURL == "" {
			llm.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claimsift configuration",
	Long: `Manage claimsift configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMSIFT_*, .env is loaded if present)
3. Config file (~/.claimsift/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, environment and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
		}

		// Never echo credentials
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = "********"
		}

		yamlData, err := marshalConfig(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprint(out, string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.claimsift/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".claimsift", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(cmd.OutOrStdout(), "\nTo view the effective configuration:\n  claimsift config show\n")
		return nil
	},
}

const configHeader = `# claimsift configuration file
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (CLAIMSIFT_*, e.g. CLAIMSIFT_LLM_MODEL)
#   3. This config file
#   4. Built-in defaults
#
# API keys are better kept in the environment:
#   export OPENAI_API_KEY=sk-...
#   export ANTHROPIC_API_KEY=sk-ant-...
#   export OLLAMA_BASE_URL=http://localhost:11434

`

// writeDefaultConfig writes the default configuration to path, refusing to
// overwrite an existing file
func writeDefaultConfig(path string) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'claimsift config show' to view it, or delete it first to recreate", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := marshalConfig(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	if _, err := f.WriteString(configHeader); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	if _, err := f.Write(yamlData); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
