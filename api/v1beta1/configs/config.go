// Package configs provides the Configuration type for grove.
package configs

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/grove/api"
	v1beta1 "github.com/macropower/grove/api/v1beta1"
	"github.com/macropower/grove/pkg/rule"
	"github.com/macropower/grove/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/main.go -o configs.v1beta1.json

// Default path templates applied when the configuration omits them.
const (
	DefaultSourcesTemplate   = "~/dev/host()/path(-2)/path(-1)"
	DefaultWorktreesTemplate = `~/dev/host()/path(-2)/path(-1)prefix_worktree(".")`
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed configs.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for grove configurations.
	ValidKinds = []string{"Configuration"}

	// DefaultValidator validates configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/configs.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config is the grove configuration: default path templates, ordered source
// routing rules, and project action rules.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Defaults are the fallback path templates.
	Defaults *rule.Defaults `json:"defaults,omitempty" jsonschema:"title=Defaults"`
	// Sources are ordered routing rules; the first match wins.
	Sources []rule.SourceRule `json:"sources,omitempty" jsonschema:"title=Source Rules"`
	// Projects attach actions to matching repositories; all matches apply.
	Projects         []rule.ProjectRule `json:"projects,omitempty" jsonschema:"title=Project Rules"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a [Config] with default values.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       "Configuration",
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil or empty fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Defaults == nil {
		c.Defaults = &rule.Defaults{}
	}

	if c.Defaults.Sources == "" {
		c.Defaults.Sources = DefaultSourcesTemplate
	}

	if c.Defaults.Worktrees == "" {
		c.Defaults.Worktrees = DefaultWorktreesTemplate
	}
}

// Resolver builds the rule resolver for this configuration.
func (c *Config) Resolver() *rule.Resolver {
	c.EnsureDefaults()

	return &rule.Resolver{
		Defaults: *c.Defaults,
		Sources:  c.Sources,
		Projects: c.Projects,
	}
}

// Validate checks every predicate, template, and action for errors. This
// runs at load time so malformed expressions fail before any rule is
// evaluated.
func (c *Config) Validate() error {
	err := c.Resolver().Validate()
	if err != nil {
		return fmt.Errorf("validate configuration: %w", err)
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Write writes the config to the specified path if it doesn't already
// exist.
func (c Config) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// WriteDefault writes the embedded default config.yaml to the specified
// path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// WriteSchema writes the embedded JSON schema next to the configuration.
func WriteSchema(path string, force bool) error {
	err := api.WriteDefaultFile(path, schemaJSON, force, "schema")
	if err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}

// GetPath returns the path to the configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}

// GetSchemaPath returns the path to the JSON schema file.
func GetSchemaPath() string {
	return api.GetConfigPath("configs.v1beta1.json")
}
