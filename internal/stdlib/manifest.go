package stdlib

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var manifestYAML []byte

// manifest is the shape of manifest.yaml: one entry per importable
// library, naming its constant Values. Native functions are still
// wired in Go (they need closures over the VM), but the constants a
// library exports are plain config data and live here instead of a
// map literal in source.
type manifest struct {
	Libraries map[string]struct {
		Constants map[string]float64 `yaml:"constants"`
	} `yaml:"libraries"`
}

func loadManifest() (manifest, error) {
	var m manifest
	err := yaml.Unmarshal(manifestYAML, &m)
	return m, err
}
