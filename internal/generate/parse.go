package generate

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
)

var (
	openFenceRegex  = regexp.MustCompile("^```[A-Za-z0-9_-]*\\s*")
	closeFenceRegex = regexp.MustCompile("\\s*```$")
)

// requiredKeys must all be present in a model answer.
var requiredKeys = []content.Field{
	content.FieldMainTitle,
	content.FieldAltTitles,
	content.FieldDescription,
	content.FieldHashtags,
	content.FieldScript,
	content.FieldKeyPoints,
}

// ParseResponse reads raw model output as content. Code fences, with or without
// a language tag, are stripped first. Any failure is a PARSE_FAILURE error.
func ParseResponse(raw string) (*content.Content, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, errors.NewParse("empty model response", nil)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &keys); err != nil {
		return nil, errors.NewParse("model response is not a JSON object", err)
	}
	for _, f := range requiredKeys {
		if _, ok := keys[f.Key()]; !ok {
			return nil, errors.NewParse("model response is missing "+f.Key(), nil)
		}
	}

	var c content.Content
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, errors.NewParse("model response has malformed fields", err)
	}
	return &c, nil
}

// StripFences removes surrounding whitespace and a markdown code fence.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = openFenceRegex.ReplaceAllString(text, "")
		text = closeFenceRegex.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
