// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package sanitize

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk YAML shape for declaring additional sensitive
// fields without touching code.
type policyFile struct {
	Fields []string `yaml:"fields"`
}

// LoadPolicy reads a YAML policy from r and merges it with the default
// policy, so user-declared fields extend rather than replace the built-in
// set.
func LoadPolicy(r io.Reader) (Policy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	base := DefaultPolicy()
	extra := NewPolicy(pf.Fields...)
	for name := range extra.names {
		base.names[name] = struct{}{}
	}
	base.patterns = append(base.patterns, extra.patterns...)
	return base, nil
}

// LoadPolicyFile reads a YAML policy from path. A missing file yields the
// default policy without error so the feature is opt-in.
func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return Policy{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadPolicy(f)
}
