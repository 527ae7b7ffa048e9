package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog holds the ordered list of eligible target domains. The list is
// immutable once loaded; Pick selects uniformly with replacement.
type Catalog struct {
	targets []string

	mu  sync.Mutex
	rnd *rand.Rand
}

type targetsFile struct {
	Domains []string `yaml:"domains"`
}

// Load reads a YAML file with a top-level "domains" sequence.
// A missing key yields an empty catalog; callers decide whether that is fatal.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse targets YAML: %w", err)
	}

	targets := make([]string, 0, len(f.Domains))
	for _, d := range f.Domains {
		d = strings.TrimSpace(d)
		if d != "" {
			targets = append(targets, d)
		}
	}

	return New(targets), nil
}

// New builds a catalog from an in-memory target list.
func New(targets []string) *Catalog {
	return &Catalog{
		targets: append([]string(nil), targets...),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pick returns a uniformly random target. Selection is with replacement:
// consecutive calls may return the same target.
func (c *Catalog) Pick() string {
	if len(c.targets) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targets[c.rnd.Intn(len(c.targets))]
}

// Len returns the number of eligible targets.
func (c *Catalog) Len() int {
	return len(c.targets)
}

// Targets returns a copy of the target list in load order.
func (c *Catalog) Targets() []string {
	return append([]string(nil), c.targets...)
}
