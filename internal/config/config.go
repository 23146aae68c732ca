// Package config loads service-level settings from a YAML file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServiceConfig holds settings loaded from hosting.yml.
type ServiceConfig struct {
	// Model is the model identifier for the enrichment collaborator.
	Model string `yaml:"model,omitempty"`

	// BaseURL points the collaborator at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	// Defaults to OPENAI_API_KEY.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`

	// ListenAddr is the MCP server listen address.
	ListenAddr string `yaml:"listenAddr,omitempty"`

	// ReviewPrompt overrides the message sent with review checkpoints.
	ReviewPrompt string `yaml:"reviewPrompt,omitempty"`

	// EnrichLimit bounds concurrent enrichment calls.
	EnrichLimit int `yaml:"enrichLimit,omitempty"`
}

// Load attempts to read hosting.yml or hosting.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ServiceConfig, error) {
	for _, name := range []string{"hosting.yml", "hosting.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ServiceConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ServiceConfig{}, nil
}
