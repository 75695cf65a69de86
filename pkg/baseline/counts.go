// Package baseline stores rule baselines outside the rule table, in a TOML counts file
// that maps rule IDs to allowed counts. The file is written only by explicit commands:
// tightening lowers counts to what a run found and merging keeps the smaller count.
package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/specvital/ratchet/pkg/domain"
)

// DefaultFilename is the counts file looked up in the project root.
const DefaultFilename = "ratchet-counts.toml"

const header = "# Managed by ratchet. Counts may only decrease; see `ratchet tighten`.\n\n"

// Counts maps rule IDs to baselines.
type Counts struct {
	values map[string]domain.Baseline
}

// New returns empty counts.
func New() *Counts {
	return &Counts{values: make(map[string]domain.Baseline)}
}

// Load reads a counts file. A missing file yields empty counts.
func Load(path string) (*Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("read counts: %w", err)
	}

	counts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return counts, nil
}

// Parse decodes counts file content. Every value must be a non-negative integer.
func Parse(data []byte) (*Counts, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse counts: %w", err)
	}

	counts := New()
	for _, id := range slices.Sorted(maps.Keys(raw)) {
		n, ok := raw[id].(int64)
		if !ok {
			return nil, fmt.Errorf("count for %q: expected integer, got %T", id, raw[id])
		}
		if n < 0 {
			return nil, fmt.Errorf("count for %q: must not be negative", id)
		}
		counts.values[id] = domain.Baseline(n)
	}
	return counts, nil
}

// Get returns the stored baseline for id.
func (c *Counts) Get(id string) (domain.Baseline, bool) {
	b, ok := c.values[id]
	return b, ok
}

// Set stores a baseline for id.
func (c *Counts) Set(id string, b domain.Baseline) {
	c.values[id] = b
}

// Len returns the number of stored baselines.
func (c *Counts) Len() int {
	return len(c.values)
}

// IDs returns the stored rule IDs in sorted order.
func (c *Counts) IDs() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Map returns a copy of the stored baselines.
func (c *Counts) Map() map[string]domain.Baseline {
	return maps.Clone(c.values)
}

// Change records one lowered baseline.
type Change struct {
	ID     string
	Before domain.Baseline
	After  domain.Baseline
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %d -> %d", c.ID, c.Before, c.After)
}

// Tighten lowers the baseline for id to found when found is below the current baseline.
// The current baseline is the stored one, or ceiling when nothing is stored yet.
// Counts never rise: a found count at or above the current baseline changes nothing.
func (c *Counts) Tighten(id string, found int, ceiling domain.Baseline) (Change, bool) {
	current, ok := c.values[id]
	if !ok || ceiling < current {
		current = ceiling
	}
	if found < 0 || found >= int(current) {
		return Change{}, false
	}

	c.values[id] = domain.Baseline(found)
	return Change{ID: id, Before: current, After: domain.Baseline(found)}, true
}

// Marshal encodes the counts with keys sorted.
func (c *Counts) Marshal() ([]byte, error) {
	raw := make(map[string]int64, len(c.values))
	for id, b := range c.values {
		raw[id] = int64(b)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, fmt.Errorf("marshal counts: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the counts file.
func (c *Counts) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write counts: %w", err)
	}
	return nil
}

// Merge combines two sides of a conflicting counts file. For IDs present on both sides
// the smaller count wins; IDs present on one side are kept as they are. The merge base
// does not influence the result.
func Merge(ours, theirs *Counts) *Counts {
	merged := New()
	for id, b := range ours.values {
		merged.values[id] = b
	}
	for id, b := range theirs.values {
		if existing, ok := merged.values[id]; !ok || b < existing {
			merged.values[id] = b
		}
	}
	return merged
}

// MergeFiles is a git merge driver: it merges the ours and theirs counts files and
// writes the result over ours. Missing files count as empty.
func MergeFiles(base, ours, theirs string) error {
	if _, err := Load(base); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	oursCounts, err := Load(ours)
	if err != nil {
		return fmt.Errorf("ours: %w", err)
	}
	theirsCounts, err := Load(theirs)
	if err != nil {
		return fmt.Errorf("theirs: %w", err)
	}
	return Merge(oursCounts, theirsCounts).Save(ours)
}
