package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog is the full content set plus lookup indexes. It is immutable after
// Parse; all accessors are safe for concurrent readers.
type Catalog struct {
	PillarCapacity map[Pillar]int   `yaml:"pillar_capacity" json:"pillar_capacity"`
	SoftwareTypes  []SoftwareType   `yaml:"software_types" json:"software_types"`
	Components     []Component      `yaml:"components" json:"components"`
	Synergies      []Synergy        `yaml:"synergies" json:"synergies"`
	Trends         []Trend          `yaml:"trends" json:"trends"`
	Archetypes     []Archetype      `yaml:"archetypes" json:"archetypes"`
	Corporations   []CorporationDef `yaml:"corporations" json:"corporations"`

	componentIndex map[string]*Component
	typeIndex      map[string]*SoftwareType
	trendIndex     map[string]*Trend
	archetypeIndex map[string]*Archetype
	warnings       []string
}

// Default returns the embedded content catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads and parses a YAML catalog file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes, indexes and validates a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal encodes the catalog back to YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Catalog) index() error {
	if len(c.PillarCapacity) == 0 {
		c.PillarCapacity = make(map[Pillar]int, len(DefaultPillarCapacity))
		for p, n := range DefaultPillarCapacity {
			c.PillarCapacity[p] = n
		}
	}

	var errs []error
	c.componentIndex = make(map[string]*Component, len(c.Components))
	c.typeIndex = make(map[string]*SoftwareType, len(c.SoftwareTypes))
	c.trendIndex = make(map[string]*Trend, len(c.Trends))
	c.archetypeIndex = make(map[string]*Archetype, len(c.Archetypes))
	c.warnings = nil

	for i := range c.SoftwareTypes {
		t := &c.SoftwareTypes[i]
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("software type %d: missing id", i))
			continue
		}
		if _, dup := c.typeIndex[t.ID]; dup {
			errs = append(errs, fmt.Errorf("software type %q: duplicate id", t.ID))
		}
		if t.DemandPool < 0 || t.BaseLifespan <= 0 {
			errs = append(errs, fmt.Errorf("software type %q: demand_pool must be >= 0 and base_lifespan > 0", t.ID))
		}
		c.typeIndex[t.ID] = t
	}

	for i := range c.Components {
		comp := &c.Components[i]
		if comp.ID == "" {
			errs = append(errs, fmt.Errorf("component %d: missing id", i))
			continue
		}
		if _, dup := c.componentIndex[comp.ID]; dup {
			errs = append(errs, fmt.Errorf("component %q: duplicate id", comp.ID))
		}
		if !comp.Pillar.Valid() {
			errs = append(errs, fmt.Errorf("component %q: unknown pillar %q", comp.ID, comp.Pillar))
		}
		if comp.Cost < 0 {
			errs = append(errs, fmt.Errorf("component %q: negative cost", comp.ID))
		}
		if comp.DevTime <= 0 {
			errs = append(errs, fmt.Errorf("component %q: dev_time must be > 0", comp.ID))
		}
		switch comp.Unlock.Type {
		case "":
			comp.Unlock.Type = UnlockFree
		case UnlockFree, UnlockMoney, UnlockMastery, UnlockFanbase, UnlockTrend:
		default:
			errs = append(errs, fmt.Errorf("component %q: unknown unlock type %q", comp.ID, comp.Unlock.Type))
		}
		if comp.ExclusiveTo != "" {
			if _, ok := c.typeIndex[comp.ExclusiveTo]; !ok {
				c.warn("component %q: exclusive_to unknown software type %q", comp.ID, comp.ExclusiveTo)
			}
		}
		c.componentIndex[comp.ID] = comp
	}

	for i := range c.Synergies {
		s := &c.Synergies[i]
		if len(s.Components) == 0 {
			errs = append(errs, fmt.Errorf("synergy %q: no components", s.ID))
		}
		for _, id := range s.Components {
			if _, ok := c.componentIndex[id]; !ok {
				c.warn("synergy %q: references unknown component %q", s.ID, id)
			}
		}
	}

	for i := range c.Trends {
		t := &c.Trends[i]
		if t.Duration.Min <= 0 || t.Duration.Max < t.Duration.Min {
			errs = append(errs, fmt.Errorf("trend %q: invalid duration %d..%d", t.ID, t.Duration.Min, t.Duration.Max))
		}
		c.trendIndex[t.ID] = t
	}

	for i := range c.Archetypes {
		a := &c.Archetypes[i]
		if a.ReleaseChance < 0 || a.ReleaseChance > 1 {
			errs = append(errs, fmt.Errorf("archetype %q: release_chance outside [0,1]", a.ID))
		}
		c.archetypeIndex[a.ID] = a
	}
	for _, corp := range c.Corporations {
		if _, ok := c.archetypeIndex[corp.Archetype]; !ok {
			errs = append(errs, fmt.Errorf("corporation %q: unknown archetype %q", corp.ID, corp.Archetype))
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Warnings lists non-fatal problems such as dangling synergy references.
func (c *Catalog) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

// Component looks up a component by id.
func (c *Catalog) Component(id string) (*Component, bool) {
	comp, ok := c.componentIndex[id]
	return comp, ok
}

// SoftwareType looks up a software type by id.
func (c *Catalog) SoftwareType(id string) (*SoftwareType, bool) {
	t, ok := c.typeIndex[id]
	return t, ok
}

// Trend looks up a trend by id.
func (c *Catalog) Trend(id string) (*Trend, bool) {
	t, ok := c.trendIndex[id]
	return t, ok
}

// Archetype looks up an archetype by id.
func (c *Catalog) Archetype(id string) (*Archetype, bool) {
	a, ok := c.archetypeIndex[id]
	return a, ok
}

// Resolve maps ids to components in order, silently skipping unknown ids.
func (c *Catalog) Resolve(ids []string) []*Component {
	out := make([]*Component, 0, len(ids))
	for _, id := range ids {
		if comp, ok := c.componentIndex[id]; ok {
			out = append(out, comp)
		}
	}
	return out
}

// DetectSynergies returns, in catalog order, every synergy whose full
// component set is contained in ids.
func (c *Catalog) DetectSynergies(ids []string) []*Synergy {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	var out []*Synergy
	for i := range c.Synergies {
		if c.Synergies[i].MatchedBy(selected) {
			out = append(out, &c.Synergies[i])
		}
	}
	return out
}

// Capacity returns the base slot count for a pillar.
func (c *Catalog) Capacity(p Pillar) int {
	if n, ok := c.PillarCapacity[p]; ok {
		return n
	}
	return DefaultPillarCapacity[p]
}
