package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"adforge/internal/domain/entity"
)

// baseRequiredFields must be present for every campaign type.
var baseRequiredFields = []string{"businessDescription", "targetAudience", "campaignGoal"}

// Field is one labeled line of the campaign brief.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Spec is a fully assembled prompt before rendering.
type Spec struct {
	Version      string              `json:"version"`
	Mode         string              `json:"mode"`
	CampaignType entity.CampaignType `json:"campaignType"`
	Role         string              `json:"role"`
	CommonRules  []string            `json:"commonRules"`
	// TypeRulesTitle and TypeRules are set in normal mode only.
	TypeRulesTitle string   `json:"typeRulesTitle,omitempty"`
	TypeRules      []string `json:"typeRules,omitempty"`
	// ModeTitle and ModeBlock are set in concept deck mode only.
	ModeTitle      string          `json:"modeTitle,omitempty"`
	ModeBlock      []string        `json:"modeBlock,omitempty"`
	UserContext    []Field         `json:"userContext"`
	OutputSchema   json.RawMessage `json:"outputSchema"`
	FewShotExample json.RawMessage `json:"fewShotExample,omitempty"`
}

// Builder is safe for concurrent use; it never mutates the catalog.
type Builder struct {
	catalog *Catalog
}

func NewBuilder(c *Catalog) *Builder {
	return &Builder{catalog: c}
}

func (b *Builder) Catalog() *Catalog { return b.catalog }

// Build assembles the prompt for mode. It fails with an input error when the
// campaign type is unknown or the brief lacks a field the type requires.
func (b *Builder) Build(mode entity.OutputMode, uc entity.UserContext) (*Spec, error) {
	if mode == nil {
		return nil, entity.NewInputError("output mode is required")
	}
	d, ok := b.catalog.Descriptor(mode.CampaignType())
	if !ok {
		return nil, entity.NewInputError(fmt.Sprintf("unrecognized campaign type %q", mode.CampaignType()))
	}
	if missing := MissingFields(d, uc); len(missing) > 0 {
		return nil, entity.NewInputError("brief is missing required fields", missing...)
	}

	switch m := mode.(type) {
	case entity.NormalMode:
		return b.buildNormal(d, uc), nil
	case entity.ConceptDeck:
		return b.buildConceptDeck(d, uc), nil
	default:
		return nil, entity.NewInputError(fmt.Sprintf("unsupported output mode %q", m.Name()))
	}
}

// MissingFields lists the required brief fields that are empty, in declaration order.
func MissingFields(d *Descriptor, uc entity.UserContext) []string {
	var missing []string
	for _, f := range append(append([]string{}, baseRequiredFields...), d.RequiredFields...) {
		if !uc.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (b *Builder) buildNormal(d *Descriptor, uc entity.UserContext) *Spec {
	return &Spec{
		Version:        b.catalog.Version,
		Mode:           entity.NormalMode{}.Name(),
		CampaignType:   d.Type,
		Role:           b.catalog.Role,
		CommonRules:    b.catalog.CommonRules,
		TypeRulesTitle: strings.ToUpper(d.Label) + " CAMPAIGN RULES",
		TypeRules:      typeRules(d),
		UserContext:    contextFields(d, uc),
		OutputSchema:   d.Skeleton,
		FewShotExample: d.Example,
	}
}

func (b *Builder) buildConceptDeck(d *Descriptor, uc entity.UserContext) *Spec {
	ct := b.catalog.Concepts
	block := make([]string, 0, len(ct.Rules)+len(ct.Strategies)+2)
	block = append(block, fmt.Sprintf("Produce %d creative concepts for a %s campaign, one for each strategy below.", len(ct.Strategies), d.Label))
	block = append(block, ct.Rules...)
	if d.Limits.HeadlineMax > 0 {
		block = append(block, fmt.Sprintf("Every headline must be %d characters or fewer.", d.Limits.HeadlineMax))
	}
	for i, s := range ct.Strategies {
		block = append(block, fmt.Sprintf("%d. %s", i+1, s))
	}
	return &Spec{
		Version:        b.catalog.Version,
		Mode:           entity.ConceptDeck{}.Name(),
		CampaignType:   d.Type,
		Role:           b.catalog.Role,
		CommonRules:    b.catalog.CommonRules,
		ModeTitle:      "CONCEPT STRATEGY MODE",
		ModeBlock:      block,
		UserContext:    contextFields(d, uc),
		OutputSchema:   ct.Skeleton,
		FewShotExample: ct.Example,
	}
}

func typeRules(d *Descriptor) []string {
	l := d.Limits
	group := fmt.Sprintf("%q", d.PrimaryKeys[0])
	var rules []string
	if l.HeadlineMax > 0 {
		rules = append(rules, fmt.Sprintf("Every headline must be %d characters or fewer, including spaces.", l.HeadlineMax))
	}
	if l.LongHeadlineMax > 0 {
		rules = append(rules, fmt.Sprintf("Every long headline must be %d characters or fewer.", l.LongHeadlineMax))
	}
	if l.DescriptionMax > 0 {
		rules = append(rules, fmt.Sprintf("Every description must be %d characters or fewer.", l.DescriptionMax))
	}
	if l.MinGroups > 0 {
		rules = append(rules, fmt.Sprintf("%s must contain at least %d entries.", group, l.MinGroups))
	}
	if l.MinHeadlines > 0 {
		rules = append(rules, fmt.Sprintf("Each entry of %s needs at least %d headlines.", group, l.MinHeadlines))
	}
	if l.MinDescriptions > 0 {
		rules = append(rules, fmt.Sprintf("Each entry of %s needs at least %d descriptions.", group, l.MinDescriptions))
	}
	if l.MinNegativeKeywords > 0 {
		rules = append(rules, fmt.Sprintf("\"negativeKeywords\" must contain at least %d unique entries.", l.MinNegativeKeywords))
	}
	return append(rules, d.Rules...)
}

// contextFields renders the brief as labeled lines in a fixed order. Empty
// optional fields are skipped; extra fields follow in key order.
func contextFields(d *Descriptor, uc entity.UserContext) []Field {
	fields := []Field{{Label: "Campaign type", Value: d.Label}}
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			fields = append(fields, Field{Label: label, Value: v})
		}
	}
	add("Business description", uc.BusinessDescription)
	add("Target audience", uc.TargetAudience)
	add("Campaign goal", uc.CampaignGoal)
	add("Brand name", uc.BrandName)
	add("App name", uc.AppName)
	add("Website", uc.WebsiteURL)
	add("Products", strings.Join(uc.Products, ", "))
	add("Unique selling points", strings.Join(uc.UniqueSellingPoints, ", "))
	add("Competitors", strings.Join(uc.Competitors, ", "))
	add("Location", uc.Location)
	add("Language", uc.Language)
	add("Tone", uc.Tone)
	if uc.MonthlyBudget > 0 {
		add("Monthly budget", strconv.FormatFloat(uc.MonthlyBudget, 'f', -1, 64))
	}

	keys := make([]string, 0, len(uc.Extra))
	for k := range uc.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, formatValue(uc.Extra[k]))
	}
	return fields
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		// json.Marshal sorts map keys, so nested values stay deterministic.
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}
