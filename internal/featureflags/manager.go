// Package featureflags evaluates runtime switches loaded from FEATURE_FLAGS
// and an optional YAML file.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// StrictStatusTransitions switches application status changes from the
// permissive policy to the strict transition table.
const StrictStatusTransitions = "strict_status_transitions"

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "strict_status_transitions=on,offer_cache=25%"
type Manager struct {
	flags map[string]string
}

// Load builds a manager from an optional YAML file of name: value pairs,
// then applies the comma-separated raw list on top of it.
func Load(raw, path string) (*Manager, error) {
	m := &Manager{flags: make(map[string]string)}
	if path != "" {
		fileFlags, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileFlags {
			m.flags[k] = v
		}
	}
	for k, v := range NewManager(raw).flags {
		m.flags[k] = v
	}
	return m, nil
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature flags file: %w", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse feature flags file %s: %w", path, err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		key := normalize(k)
		value := normalize(fmt.Sprint(v))
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out, nil
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given account.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, accountID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pctRaw := strings.TrimSuffix(value, "%")
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return false
		}
		if pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if accountID == 0 {
			return false
		}
		return rolloutBucket(name, accountID) < pct
	}

	return false
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one account.
func (m *Manager) Snapshot(accountID uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, accountID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, accountID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), accountID)))
	return int(h.Sum32() % 100)
}
