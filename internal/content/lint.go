package content

import (
	"fmt"
	"strings"
	"unicode"
)

// Content limits enforced by Lint.
const (
	MinAltTitles      = 2
	ThumbnailMaxChars = 24
	ThumbnailMaxWords = 4
	MaxCTAVariants    = 3
	MinCTAChars       = 5
)

// Violation describes one broken content invariant.
type Violation struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field.Key(), v.Message)
}

// Lint checks c against every bundle invariant and returns the violations found.
// An empty result means the bundle is well-formed.
func Lint(c *Content) []Violation {
	var out []Violation
	add := func(f Field, format string, args ...any) {
		out = append(out, Violation{Field: f, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.MainTitle) == "" {
		add(FieldMainTitle, "main title is empty")
	}

	if len(c.AltTitles) < MinAltTitles {
		add(FieldAltTitles, "need at least %d alternative titles, got %d", MinAltTitles, len(c.AltTitles))
	}
	seen := map[string]bool{FoldKey(c.MainTitle): true}
	for _, t := range c.AltTitles {
		key := FoldKey(t)
		switch {
		case key == "":
			add(FieldAltTitles, "empty alternative title")
		case key == FoldKey(c.MainTitle):
			add(FieldAltTitles, "alternative title repeats the main title: %q", t)
		case seen[key]:
			add(FieldAltTitles, "duplicate alternative title: %q", t)
		}
		seen[key] = true
	}

	if strings.TrimSpace(c.Description) == "" {
		add(FieldDescription, "description is empty")
	}

	seenTags := map[string]bool{}
	for _, h := range c.Hashtags {
		key := FoldKey(h)
		switch {
		case key == "":
			add(FieldHashtags, "empty hashtag")
		case strings.HasPrefix(h, "#"):
			add(FieldHashtags, "hashtag stored with leading marker: %q", h)
		case seenTags[key]:
			add(FieldHashtags, "duplicate hashtag: %q", h)
		}
		seenTags[key] = true
	}

	if strings.TrimSpace(c.Script) == "" {
		add(FieldScript, "script is empty")
	}

	if len(c.KeyPoints) == 0 {
		add(FieldKeyPoints, "no key points")
	}
	for _, p := range c.KeyPoints {
		if strings.TrimSpace(p) == "" {
			add(FieldKeyPoints, "empty key point")
		}
	}

	if c.ThumbnailText != "" {
		t := c.ThumbnailText
		if CountChars(t) > ThumbnailMaxChars {
			add(FieldThumbnail, "thumbnail text longer than %d characters", ThumbnailMaxChars)
		}
		if len(strings.Fields(t)) > ThumbnailMaxWords {
			add(FieldThumbnail, "thumbnail text has more than %d words", ThumbnailMaxWords)
		}
		if strings.ToUpper(t) != t {
			add(FieldThumbnail, "thumbnail text is not upper-case")
		}
		for _, r := range t {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
				add(FieldThumbnail, "thumbnail text contains %q", r)
				break
			}
		}
	}

	if len(c.CTAVariants) > MaxCTAVariants {
		add(FieldCTAVariants, "more than %d CTA variants", MaxCTAVariants)
	}
	seenCTA := map[string]bool{}
	for _, cta := range c.CTAVariants {
		key := FoldKey(cta)
		if CountChars(strings.TrimSpace(cta)) < MinCTAChars {
			add(FieldCTAVariants, "CTA variant too short: %q", cta)
		}
		if seenCTA[key] {
			add(FieldCTAVariants, "duplicate CTA variant: %q", cta)
		}
		seenCTA[key] = true
	}

	return out
}
