// Package prompt assembles the generation prompt for a campaign brief from the
// static campaign type catalog.
package prompt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"adforge/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ConceptKey is the top-level key of the concept deck skeleton. Every campaign
// type accepts it as an alternative shape.
const ConceptKey = "concepts"

type Limits struct {
	HeadlineMax         int `yaml:"headlineMax" json:"headlineMax,omitempty"`
	LongHeadlineMax     int `yaml:"longHeadlineMax" json:"longHeadlineMax,omitempty"`
	DescriptionMax      int `yaml:"descriptionMax" json:"descriptionMax,omitempty"`
	MinGroups           int `yaml:"minGroups" json:"minGroups,omitempty"`
	MinHeadlines        int `yaml:"minHeadlines" json:"minHeadlines,omitempty"`
	MinDescriptions     int `yaml:"minDescriptions" json:"minDescriptions,omitempty"`
	MinNegativeKeywords int `yaml:"minNegativeKeywords" json:"minNegativeKeywords,omitempty"`
}

// Descriptor is the static configuration of one campaign type.
type Descriptor struct {
	Type           entity.CampaignType `yaml:"-" json:"type"`
	Label          string              `yaml:"label" json:"label"`
	PrimaryKeys    []string            `yaml:"primaryKeys" json:"primaryKeys"`
	RequiredFields []string            `yaml:"requiredFields" json:"requiredFields"`
	Limits         Limits              `yaml:"limits" json:"limits"`
	Rules          []string            `yaml:"rules" json:"rules"`
	Skeleton       json.RawMessage     `yaml:"-" json:"skeleton"`
	Example        json.RawMessage     `yaml:"-" json:"example"`

	SkeletonText string `yaml:"skeleton" json:"-"`
	ExampleText  string `yaml:"example" json:"-"`
}

// AcceptedKeys are the top-level keys the shape guard accepts in normal mode.
func (d *Descriptor) AcceptedKeys() []string {
	keys := make([]string, 0, len(d.PrimaryKeys)+1)
	keys = append(keys, d.PrimaryKeys...)
	return append(keys, ConceptKey)
}

type ConceptTemplate struct {
	Strategies   []string        `yaml:"strategies" json:"strategies"`
	Rules        []string        `yaml:"rules" json:"rules"`
	Skeleton     json.RawMessage `yaml:"-" json:"skeleton"`
	Example      json.RawMessage `yaml:"-" json:"example"`
	SkeletonText string          `yaml:"skeleton" json:"-"`
	ExampleText  string          `yaml:"example" json:"-"`
}

type Catalog struct {
	Version     string                              `yaml:"version" json:"version"`
	Role        string                              `yaml:"role" json:"role"`
	CommonRules []string                            `yaml:"commonRules" json:"commonRules"`
	Types       map[entity.CampaignType]*Descriptor `yaml:"types" json:"types"`
	Concepts    ConceptTemplate                     `yaml:"concepts" json:"concepts"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(catalogYAML)
})

// DefaultCatalog returns the embedded catalog, parsed once.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// LoadCatalog parses and checks a catalog document. Every campaign type must be
// present, skeletons and examples must be JSON objects, and every primary key
// must be a top-level key of its skeleton.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c.Version == "" {
		return nil, fmt.Errorf("catalog version is required")
	}
	for _, ct := range entity.CampaignTypes {
		d, ok := c.Types[ct]
		if !ok || d == nil {
			return nil, fmt.Errorf("catalog is missing campaign type %q", ct)
		}
		d.Type = ct
		if len(d.PrimaryKeys) == 0 {
			return nil, fmt.Errorf("campaign type %q declares no primary keys", ct)
		}
		skeleton, keys, err := normalizeObject(d.SkeletonText)
		if err != nil {
			return nil, fmt.Errorf("campaign type %q skeleton: %w", ct, err)
		}
		for _, pk := range d.PrimaryKeys {
			if _, ok := keys[pk]; !ok {
				return nil, fmt.Errorf("campaign type %q: primary key %q missing from skeleton", ct, pk)
			}
		}
		example, _, err := normalizeObject(d.ExampleText)
		if err != nil {
			return nil, fmt.Errorf("campaign type %q example: %w", ct, err)
		}
		d.Skeleton, d.Example = skeleton, example
	}
	for ct := range c.Types {
		if _, err := entity.ParseCampaignType(string(ct)); err != nil {
			return nil, fmt.Errorf("catalog declares unknown campaign type %q", ct)
		}
	}

	skeleton, keys, err := normalizeObject(c.Concepts.SkeletonText)
	if err != nil {
		return nil, fmt.Errorf("concept skeleton: %w", err)
	}
	if _, ok := keys[ConceptKey]; !ok {
		return nil, fmt.Errorf("concept skeleton must contain %q", ConceptKey)
	}
	example, _, err := normalizeObject(c.Concepts.ExampleText)
	if err != nil {
		return nil, fmt.Errorf("concept example: %w", err)
	}
	if len(c.Concepts.Strategies) == 0 {
		return nil, fmt.Errorf("concept template lists no strategies")
	}
	c.Concepts.Skeleton, c.Concepts.Example = skeleton, example
	return &c, nil
}

func (c *Catalog) Descriptor(ct entity.CampaignType) (*Descriptor, bool) {
	d, ok := c.Types[ct]
	return d, ok
}

// Descriptors returns every descriptor in the canonical campaign type order.
func (c *Catalog) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(entity.CampaignTypes))
	for _, ct := range entity.CampaignTypes {
		if d, ok := c.Types[ct]; ok {
			out = append(out, d)
		}
	}
	return out
}

// normalizeObject indents a JSON object with two spaces, keeping key order, and
// returns its top-level keys.
func normalizeObject(text string) (json.RawMessage, map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace([]byte(text)), "", "  "); err != nil {
		return nil, nil, err
	}
	return json.RawMessage(buf.Bytes()), top, nil
}
