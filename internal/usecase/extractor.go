package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"adforge/internal/domain/entity"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json|JSON)?[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```$")

	markdown = goldmark.New()

	errNotObject = errors.New("top-level JSON value is not an object")
)

// Extract reduces raw model text to a JSON object. It tries, in order: the
// text with surrounding code fences stripped, each fenced code block inside
// the text when exactly one of them holds an object, and the span from the
// first '{' to the last '}'. Each candidate is decoded strictly; nothing is
// repaired or guessed.
func Extract(raw string) (map[string]any, error) {
	trimmed := StripFences(raw)
	if trimmed == "" {
		return nil, entity.NewParseError("model returned empty text", raw, nil)
	}

	obj, strictErr := decodeObject(trimmed)
	if strictErr == nil {
		return obj, nil
	}

	// A fenced block wins only when it is the sole one holding an object;
	// several candidates are ambiguous and fall through.
	var fenced []map[string]any
	for _, block := range fencedBlocks(raw) {
		if obj, err := decodeObject(block); err == nil {
			fenced = append(fenced, obj)
		}
	}
	if len(fenced) == 1 {
		return fenced[0], nil
	}

	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first < 0 || last <= first {
		return nil, entity.NewParseError("no JSON object found in model output", raw, strictErr)
	}
	obj, err := decodeObject(trimmed[first : last+1])
	if err != nil {
		return nil, entity.NewParseError("model output contains malformed JSON", raw, err)
	}
	return obj, nil
}

// StripFences removes an optional leading ```json (or bare ```) and an
// optional trailing ``` and trims surrounding whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// fencedBlocks returns the bodies of fenced code blocks tagged json or untagged.
func fencedBlocks(raw string) []string {
	src := []byte(raw)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fcb.Language(src)))
		if lang != "" && lang != "json" {
			return ast.WalkSkipChildren, nil
		}
		var buf bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		blocks = append(blocks, strings.TrimSpace(buf.String()))
		return ast.WalkSkipChildren, nil
	})
	return blocks
}
