package fmuresults

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ErichSuter/fmu-dataio/internal/warn"
)

// GlobalConfigEnv names the environment variable pointing at the global
// configuration file when no explicit path is given.
const GlobalConfigEnv = "FMU_GLOBAL_CONFIG"

// StratigraphyElement maps an informal name used in the model to its
// official stratigraphic identity.
type StratigraphyElement struct {
	Name               string   `yaml:"name" json:"name"`
	Stratigraphic      bool     `yaml:"stratigraphic" json:"stratigraphic"`
	Alias              []string `yaml:"alias,omitempty" json:"alias,omitempty"`
	StratigraphicAlias []string `yaml:"stratigraphic_alias,omitempty" json:"stratigraphic_alias,omitempty"`
}

// Stratigraphy is the model's mapping from informal to official
// stratigraphic names.
type Stratigraphy map[string]StratigraphyElement

// GlobalConfiguration is the static, asset-wide configuration loaded from
// the global config YAML. An invalid configuration does not abort exports;
// exports degrade to writing artifacts without metadata.
type GlobalConfiguration struct {
	Access       ConfigAccess `yaml:"access" json:"access"`
	Masterdata   Masterdata   `yaml:"masterdata" json:"masterdata"`
	Model        Model        `yaml:"model" json:"model"`
	Stratigraphy Stratigraphy `yaml:"stratigraphy,omitempty" json:"stratigraphy,omitempty"`
}

// ConfigAccess is the access block of the global configuration. The
// classification may come from the deprecated ssdl.access_level field; see
// Normalize.
type ConfigAccess struct {
	Asset          Asset          `yaml:"asset" json:"asset"`
	Classification Classification `yaml:"classification,omitempty" json:"classification,omitempty"`
	Ssdl           *Ssdl          `yaml:"ssdl,omitempty" json:"ssdl,omitempty"`
}

// Normalize mirrors the classification from the deprecated
// ssdl.access_level field when no explicit classification is set, and maps
// the deprecated 'asset' level to 'restricted'. It returns the effective
// classification.
func (a *ConfigAccess) Normalize() Classification {
	c := a.Classification
	if c == "" && a.Ssdl != nil && a.Ssdl.AccessLevel != "" {
		warn.Deprecationf("access.ssdl.access_level is deprecated, use access.classification")
		c = a.Ssdl.AccessLevel
	}
	if c == ClassificationAsset {
		warn.Deprecationf("classification 'asset' is deprecated, use 'restricted'")
		c = ClassificationRestricted
	}
	a.Classification = c
	return c
}

// Validate reports every problem in the configuration. Callers treat the
// result as advisory: an invalid configuration downgrades exports to
// metadata-less artifact writes rather than failing them.
func (c *GlobalConfiguration) Validate() error {
	var violations []Violation
	if c.Access.Asset.Name == "" {
		violations = append(violations, Violation{"access.asset.name", "required"})
	}
	if cl := c.Access.Classification; cl != "" && !containsClassification(KnownClassifications, cl) {
		violations = append(violations, Violation{"access.classification",
			fmt.Sprintf("unknown classification %q", cl)})
	}
	if c.Model.Name == "" {
		violations = append(violations, Violation{"model.name", "required"})
	}
	if c.Model.Revision == "" {
		violations = append(violations, Violation{"model.revision", "required"})
	}
	smda := &c.Masterdata.Smda
	if smda.CoordinateSystem.Identifier == "" {
		violations = append(violations, Violation{"masterdata.smda.coordinate_system.identifier", "required"})
	}
	if !IsUUIDStr(smda.CoordinateSystem.UUID) {
		violations = append(violations, Violation{"masterdata.smda.coordinate_system.uuid", "not a uuid"})
	}
	if len(smda.Country) == 0 {
		violations = append(violations, Violation{"masterdata.smda.country", "must hold at least one item"})
	}
	if len(smda.Field) == 0 {
		violations = append(violations, Violation{"masterdata.smda.field", "must hold at least one item"})
	}
	if !IsUUIDStr(smda.StratigraphicColumn.UUID) {
		violations = append(violations, Violation{"masterdata.smda.stratigraphic_column.uuid", "not a uuid"})
	}
	for name, elem := range c.Stratigraphy {
		if elem.Name == "" {
			violations = append(violations, Violation{
				"stratigraphy." + name + ".name", "required"})
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Resolve looks up the official identity for an informal name. The second
// return is false when the stratigraphy does not know the name.
func (s Stratigraphy) Resolve(name string) (StratigraphyElement, bool) {
	elem, ok := s[name]
	return elem, ok
}

// LoadGlobalConfig reads and decodes a global configuration file. When
// path is empty the FMU_GLOBAL_CONFIG environment variable is consulted.
// The returned configuration is normalized but not validated; call
// Validate to decide between full and degraded export.
func LoadGlobalConfig(path string) (*GlobalConfiguration, error) {
	if path == "" {
		path = os.Getenv(GlobalConfigEnv)
	}
	if path == "" {
		return nil, fmt.Errorf("no global config path given and %s is unset", GlobalConfigEnv)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read global config: %w", err)
	}
	var cfg GlobalConfiguration
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode global config %s: %w", path, err)
	}
	cfg.Access.Normalize()
	return &cfg, nil
}
