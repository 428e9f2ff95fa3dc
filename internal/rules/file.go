package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a rules file:
//
//	rules:
//	  - pattern: "^T8$"
//	    color: khaki
//	    free: true
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads an ordered rule list from a YAML file. Order in the file is
// evaluation order.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}
	for i, r := range f.Rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("rules file %s: rule %d has an empty pattern", path, i+1)
		}
	}
	return f.Rules, nil
}
