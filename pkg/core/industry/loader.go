package industry

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"github.com/earningscope/engine/pkg/core/ferr"
	"github.com/earningscope/engine/pkg/core/logx"
)

type seedFile struct {
	Industries []Profile `yaml:"industries"`
}

// LoadFromFile reads a YAML seed file of industry profiles into r.
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ferr.New(ferr.NotFound, "industry.LoadFromFile", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return ferr.New(ferr.InvalidInput, "industry.LoadFromFile", err)
	}
	for _, p := range seed.Industries {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	logx.Infof("industry", "loaded %d industry profiles from %s", len(seed.Industries), path)
	return nil
}

// LoadOverride applies a human-edited HJSON override file on top of
// whatever profiles are already registered: profiles present in the
// override replace the existing entry for that code, new codes are
// added. A missing override file is not an error — overrides are
// optional by design.
func (r *Registry) LoadOverride(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ferr.New(ferr.NotFound, "industry.LoadOverride", err)
	}
	var seed seedFile
	if err := hjson.Unmarshal(data, &seed); err != nil {
		return ferr.New(ferr.InvalidInput, "industry.LoadOverride", fmt.Errorf("parsing hjson override: %w", err))
	}
	for _, p := range seed.Industries {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	logx.Infof("industry", "applied %d industry profile overrides from %s", len(seed.Industries), path)
	return nil
}
