// Package theme loads theme metrics: a YAML document of groups, each a map
// of metric name to string value.
//
//	Unlocks:
//	  UnlockNames: "Foo,Bar"
//	  UnlockFoo: "song,Foo;code,1001;roulette"
package theme

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Metrics is a reloadable set of theme metrics. It is safe for concurrent use.
type Metrics struct {
	mu     sync.RWMutex
	groups map[string]map[string]string
}

func NewMetrics() *Metrics {
	return &Metrics{groups: make(map[string]map[string]string)}
}

// Parse decodes a metrics document.
func Parse(data []byte) (*Metrics, error) {
	groups := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse metrics: %w", err)
	}
	for g, names := range groups {
		if names == nil {
			groups[g] = make(map[string]string)
		}
	}
	return &Metrics{groups: groups}, nil
}

func LoadFile(path string) (*Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// ObjectFetcher downloads a whole object by key (utils.R2Client).
type ObjectFetcher interface {
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

func LoadObject(ctx context.Context, f ObjectFetcher, key string) (*Metrics, error) {
	data, err := f.FetchObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Metric returns the value of name in group.
func (m *Metrics) Metric(group, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names, ok := m.groups[group]
	if !ok {
		return "", fmt.Errorf("metric group %q not found", group)
	}
	v, ok := names[name]
	if !ok {
		return "", fmt.Errorf("metric %s::%s not found", group, name)
	}
	return v, nil
}

// Replace swaps in the contents of other.
func (m *Metrics) Replace(other *Metrics) {
	other.mu.RLock()
	groups := other.groups
	other.mu.RUnlock()

	m.mu.Lock()
	m.groups = groups
	m.mu.Unlock()
}

func (m *Metrics) Groups() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.groups))
	for g := range m.groups {
		out = append(out, g)
	}
	return out
}
