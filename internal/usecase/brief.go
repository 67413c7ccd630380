package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"adforge/internal/domain/entity"
)

const briefInstruction = `Extract the advertising brief fields from the marketer's notes below as one flat JSON object.
Use only these keys: "businessDescription", "targetAudience", "campaignGoal", "brandName", "websiteUrl",
"products" (list of strings), "uniqueSellingPoints" (list of strings), "competitors" (list of strings),
"location", "language", "tone", "monthlyBudget" (number), "appName".
Omit a key when the notes do not state it. Do not invent values. Do not explain.
Example: "We sell handmade oak desks to remote workers in Germany, goal is online sales" ->
{"businessDescription": "handmade oak desks", "targetAudience": "remote workers", "location": "Germany", "campaignGoal": "online sales"}`

// BriefParser fills a UserContext from free-form notes with one model call.
type BriefParser struct {
	invoker *Invoker
	params  entity.GenerationParams
}

func NewBriefParser(invoker *Invoker, params entity.GenerationParams) *BriefParser {
	// Extraction wants the most literal reading of the notes.
	params.Temperature = 0
	return &BriefParser{invoker: invoker, params: params}
}

// Parse returns the fields the model could find. It fails with a validation
// error when the model returned none of the known fields.
func (b *BriefParser) Parse(ctx context.Context, notes string) (entity.UserContext, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return entity.UserContext{}, entity.NewInputError("notes are empty")
	}

	raw, err := b.invoker.Invoke(ctx, entity.GenerationRequest{
		Prompt:           briefInstruction + "\n\nNotes: " + notes,
		GenerationParams: b.params,
	})
	if err != nil {
		return entity.UserContext{}, asPipelineError(err)
	}
	obj, err := Extract(raw.Text)
	if err != nil {
		return entity.UserContext{}, asPipelineError(err)
	}
	delete(obj, "extra")

	encoded, err := json.Marshal(obj)
	if err != nil {
		return entity.UserContext{}, entity.NewParseError("brief fields could not be re-encoded", raw.Text, err)
	}
	var uc entity.UserContext
	if err := json.Unmarshal(encoded, &uc); err != nil {
		return entity.UserContext{}, entity.NewValidationError("brief fields have unexpected types: " + err.Error())
	}
	if uc.IsZero() {
		return entity.UserContext{}, entity.NewValidationError("no brief fields found in notes", "businessDescription", "targetAudience", "campaignGoal")
	}
	return uc, nil
}
