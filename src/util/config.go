package util

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Config is the on-disk YAML configuration. Fields left out of the file keep the value they already hold in
// Options.
type Config struct {
	Target         *string `yaml:"target"`
	Assembly       *string `yaml:"assembly"`
	ExternAssembly *string `yaml:"extern_assembly"`
	PInvokeLib     *string `yaml:"pinvoke_library"`
	EntryPoint     *string `yaml:"entry_point"`
	PointerSize    *int    `yaml:"pointer_size"`
	ShortBranches  *bool   `yaml:"short_branches"`
}

// ---------------------
// ----- Functions -----
// ---------------------

// LoadConfig reads the YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read configuration file: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig decodes a YAML configuration document. Unknown keys are rejected.
func ParseConfig(b []byte) (Config, error) {
	cfg := Config{}
	node := yaml.Node{}
	if err := yaml.Unmarshal(b, &node); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(node.Content) == 0 {
		return cfg, nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return cfg, fmt.Errorf("invalid configuration: line %d: expected a mapping", root.Line)
	}
	for i1 := 0; i1 < len(root.Content); i1 += 2 {
		if key := root.Content[i1]; !knownKey(key.Value) {
			return cfg, fmt.Errorf("invalid configuration: line %d: unknown key %q", key.Line, key.Value)
		}
	}
	if err := root.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Apply copies every field set in Config cfg into opt.
func (cfg Config) Apply(opt *Options) error {
	if cfg.Target != nil {
		t, err := ParseTarget(*cfg.Target)
		if err != nil {
			return err
		}
		opt.Target = t
	}
	if cfg.Assembly != nil {
		opt.Assembly = *cfg.Assembly
	}
	if cfg.ExternAssembly != nil {
		opt.ExternAssembly = *cfg.ExternAssembly
	}
	if cfg.PInvokeLib != nil {
		opt.PInvokeLib = *cfg.PInvokeLib
	}
	if cfg.EntryPoint != nil {
		opt.EntryPoint = *cfg.EntryPoint
	}
	if cfg.PointerSize != nil {
		opt.PointerSize = *cfg.PointerSize
	}
	if cfg.ShortBranches != nil {
		opt.ShortBranches = *cfg.ShortBranches
	}
	return nil
}

// knownKey returns true if key names a Config field.
func knownKey(key string) bool {
	switch key {
	case "target", "assembly", "extern_assembly", "pinvoke_library", "entry_point", "pointer_size",
		"short_branches":
		return true
	}
	return false
}
