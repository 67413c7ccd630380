package usecase

import (
	"fmt"
	"unicode/utf8"

	"adforge/internal/domain/entity"
	"adforge/internal/prompt"
)

// ShapeGuard checks that a parsed payload has the top-level shape its campaign
// type expects. Copy limits are only audited, never enforced.
type ShapeGuard struct {
	catalog *prompt.Catalog
}

func NewShapeGuard(c *prompt.Catalog) *ShapeGuard {
	return &ShapeGuard{catalog: c}
}

// Validate returns payload unchanged when at least one accepted key holds a
// non-empty array or object. Normal mode accepts the type's primary keys or
// the concept deck key; concept deck mode accepts only the latter.
func (g *ShapeGuard) Validate(payload map[string]any, mode entity.OutputMode) (map[string]any, error) {
	if mode == nil {
		return nil, entity.NewInputError("output mode is required")
	}
	ct := mode.CampaignType()
	d, ok := g.catalog.Descriptor(ct)
	if !ok {
		return nil, entity.NewInputError(fmt.Sprintf("unrecognized campaign type %q", ct))
	}

	accepted := d.AcceptedKeys()
	if _, concept := mode.(entity.ConceptDeck); concept {
		accepted = []string{prompt.ConceptKey}
	}
	for _, key := range accepted {
		if nonEmptyContainer(payload[key]) {
			return payload, nil
		}
	}
	return nil, entity.NewValidationError(
		fmt.Sprintf("%s campaign output has no non-empty top-level key among the accepted ones", ct),
		accepted...,
	)
}

func nonEmptyContainer(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

// Audit reports copy-rule violations in a payload that already passed
// Validate. The report is advisory.
func (g *ShapeGuard) Audit(payload map[string]any, mode entity.OutputMode) []entity.Advisory {
	if mode == nil {
		return nil
	}
	d, ok := g.catalog.Descriptor(mode.CampaignType())
	if !ok {
		return nil
	}
	l := d.Limits
	var out []entity.Advisory

	if _, concept := mode.(entity.ConceptDeck); concept {
		want := len(g.catalog.Concepts.Strategies)
		concepts, _ := payload[prompt.ConceptKey].([]any)
		if len(concepts) != want {
			out = append(out, entity.Advisory{
				Path:    prompt.ConceptKey,
				Rule:    "conceptCount",
				Message: fmt.Sprintf("expected %d concepts, got %d", want, len(concepts)),
			})
		}
		for i, c := range concepts {
			obj, _ := c.(map[string]any)
			out = append(out, checkLength(fmt.Sprintf("%s[%d].headline", prompt.ConceptKey, i), obj["headline"], l.HeadlineMax, "headlineMax")...)
		}
		return out
	}

	if l.MinNegativeKeywords > 0 {
		neg, _ := payload["negativeKeywords"].([]any)
		if len(neg) < l.MinNegativeKeywords {
			out = append(out, entity.Advisory{
				Path:    "negativeKeywords",
				Rule:    "minNegativeKeywords",
				Message: fmt.Sprintf("expected at least %d negative keywords, got %d", l.MinNegativeKeywords, len(neg)),
			})
		}
	}

	for _, key := range d.PrimaryKeys {
		groups, ok := payload[key].([]any)
		if !ok {
			continue
		}
		if l.MinGroups > 0 && len(groups) < l.MinGroups {
			out = append(out, entity.Advisory{
				Path:    key,
				Rule:    "minGroups",
				Message: fmt.Sprintf("expected at least %d entries, got %d", l.MinGroups, len(groups)),
			})
		}
		for i, raw := range groups {
			group, _ := raw.(map[string]any)
			path := fmt.Sprintf("%s[%d]", key, i)
			out = append(out, checkList(path+".headlines", group["headlines"], l.MinHeadlines, l.HeadlineMax, "Headlines", "headlineMax")...)
			out = append(out, checkList(path+".longHeadlines", group["longHeadlines"], 0, l.LongHeadlineMax, "", "longHeadlineMax")...)
			out = append(out, checkList(path+".descriptions", group["descriptions"], l.MinDescriptions, l.DescriptionMax, "Descriptions", "descriptionMax")...)
		}
	}
	return out
}

func checkList(path string, v any, minCount, maxLen int, countRule, lenRule string) []entity.Advisory {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []entity.Advisory
	if minCount > 0 && len(items) < minCount {
		out = append(out, entity.Advisory{
			Path:    path,
			Rule:    "min" + countRule,
			Message: fmt.Sprintf("expected at least %d items, got %d", minCount, len(items)),
		})
	}
	for i, item := range items {
		out = append(out, checkLength(fmt.Sprintf("%s[%d]", path, i), item, maxLen, lenRule)...)
	}
	return out
}

func checkLength(path string, v any, maxLen int, rule string) []entity.Advisory {
	s, ok := v.(string)
	if !ok || maxLen <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(s); n > maxLen {
		return []entity.Advisory{{
			Path:    path,
			Rule:    rule,
			Message: fmt.Sprintf("%d characters exceeds the %d character limit", n, maxLen),
		}}
	}
	return nil
}
