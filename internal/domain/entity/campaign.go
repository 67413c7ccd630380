package entity

import (
	"fmt"
	"strings"
	"time"
)

type CampaignType string

const (
	CampaignSearch   CampaignType = "search"
	CampaignDisplay  CampaignType = "display"
	CampaignShopping CampaignType = "shopping"
	CampaignVideo    CampaignType = "video"
	CampaignApp      CampaignType = "app"
	CampaignPMax     CampaignType = "pmax"
)

// CampaignTypes lists the closed set in a stable order.
var CampaignTypes = []CampaignType{
	CampaignSearch,
	CampaignDisplay,
	CampaignShopping,
	CampaignVideo,
	CampaignApp,
	CampaignPMax,
}

func ParseCampaignType(s string) (CampaignType, error) {
	ct := CampaignType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CampaignTypes {
		if ct == known {
			return ct, nil
		}
	}
	return "", NewInputError(fmt.Sprintf("unrecognized campaign type %q", s))
}

// OutputMode selects which template family the builder assembles.
// It is either NormalMode or ConceptDeck.
type OutputMode interface {
	CampaignType() CampaignType
	Name() string
	isOutputMode()
}

// NormalMode asks for the per-type asset skeleton.
type NormalMode struct{ Type CampaignType }

// ConceptDeck asks for the fixed list of named creative strategies instead.
type ConceptDeck struct{ Type CampaignType }

func (m NormalMode) CampaignType() CampaignType  { return m.Type }
func (m NormalMode) Name() string                { return "normal" }
func (NormalMode) isOutputMode()                 {}
func (m ConceptDeck) CampaignType() CampaignType { return m.Type }
func (m ConceptDeck) Name() string               { return "concepts" }
func (ConceptDeck) isOutputMode()                {}

// ParseOutputMode resolves the wire names "normal" and "concepts"; empty means normal.
func ParseOutputMode(mode string, ct CampaignType) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "normal":
		return NormalMode{Type: ct}, nil
	case "concepts", "concept":
		return ConceptDeck{Type: ct}, nil
	default:
		return nil, NewInputError(fmt.Sprintf("unrecognized output mode %q", mode))
	}
}

// UserContext holds the marketer's form fields.
type UserContext struct {
	BusinessDescription string         `json:"businessDescription"`
	TargetAudience      string         `json:"targetAudience"`
	CampaignGoal        string         `json:"campaignGoal"`
	BrandName           string         `json:"brandName,omitempty"`
	WebsiteURL          string         `json:"websiteUrl,omitempty"`
	Products            []string       `json:"products,omitempty"`
	UniqueSellingPoints []string       `json:"uniqueSellingPoints,omitempty"`
	Competitors         []string       `json:"competitors,omitempty"`
	Location            string         `json:"location,omitempty"`
	Language            string         `json:"language,omitempty"`
	Tone                string         `json:"tone,omitempty"`
	MonthlyBudget       float64        `json:"monthlyBudget,omitempty"`
	AppName             string         `json:"appName,omitempty"`
	Extra               map[string]any `json:"extra,omitempty"`
}

// Has reports whether the named field (JSON name) carries a value.
func (u UserContext) Has(field string) bool {
	switch field {
	case "businessDescription":
		return strings.TrimSpace(u.BusinessDescription) != ""
	case "targetAudience":
		return strings.TrimSpace(u.TargetAudience) != ""
	case "campaignGoal":
		return strings.TrimSpace(u.CampaignGoal) != ""
	case "brandName":
		return strings.TrimSpace(u.BrandName) != ""
	case "websiteUrl":
		return strings.TrimSpace(u.WebsiteURL) != ""
	case "products":
		return len(u.Products) > 0
	case "uniqueSellingPoints":
		return len(u.UniqueSellingPoints) > 0
	case "competitors":
		return len(u.Competitors) > 0
	case "location":
		return strings.TrimSpace(u.Location) != ""
	case "language":
		return strings.TrimSpace(u.Language) != ""
	case "tone":
		return strings.TrimSpace(u.Tone) != ""
	case "monthlyBudget":
		return u.MonthlyBudget > 0
	case "appName":
		return strings.TrimSpace(u.AppName) != ""
	default:
		v, ok := u.Extra[field]
		return ok && v != nil
	}
}

// IsZero reports whether no field at all is set.
func (u UserContext) IsZero() bool {
	for _, f := range []string{
		"businessDescription", "targetAudience", "campaignGoal", "brandName", "websiteUrl",
		"products", "uniqueSellingPoints", "competitors", "location", "language", "tone",
		"monthlyBudget", "appName",
	} {
		if u.Has(f) {
			return false
		}
	}
	return len(u.Extra) == 0
}

// Advisory is a non-fatal copy-rule violation found in a generated payload.
type Advisory struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// CampaignRecord is what the service persists per owner.
type CampaignRecord struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	CampaignType  CampaignType   `json:"campaignType"`
	OutputMode    string         `json:"outputMode"`
	UserContext   UserContext    `json:"userContext"`
	Payload       map[string]any `json:"payload"`
	Advisories    []Advisory     `json:"advisories,omitempty"`
	Model         string         `json:"model"`
	PromptVersion string         `json:"promptVersion"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// SimilarCampaign is a neighbour returned by the similarity index.
type SimilarCampaign struct {
	CampaignID   string       `json:"campaignId"`
	CampaignType CampaignType `json:"campaignType"`
	Summary      string       `json:"summary"`
	Score        float32      `json:"score"`
}
