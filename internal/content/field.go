package content

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/hpungsan/reelcraft/internal/errors"
)

// Field identifies one addressable field of Content.
// The zero value is not a valid field.
type Field int

const (
	FieldMainTitle Field = iota + 1
	FieldAltTitles
	FieldDescription
	FieldHashtags
	FieldScript
	FieldKeyPoints
	FieldSearchTags
	FieldSEOKeywords
	FieldThumbnail
	FieldCTAVariants
)

// AllFields lists every field in canonical (export) order.
var AllFields = []Field{
	FieldMainTitle,
	FieldAltTitles,
	FieldDescription,
	FieldHashtags,
	FieldScript,
	FieldKeyPoints,
	FieldSearchTags,
	FieldSEOKeywords,
	FieldThumbnail,
	FieldCTAVariants,
}

var fieldKeys = map[Field]string{
	FieldMainTitle:   "TITULO_PRINCIPAL",
	FieldAltTitles:   "TITULOS_ALTERNATIVOS",
	FieldDescription: "DESCRICAO_LEGENDA",
	FieldHashtags:    "HASHTAGS_TAGS",
	FieldScript:      "ROTEIRO",
	FieldKeyPoints:   "PONTOS_CHAVE_DO_VIDEO",
	FieldSearchTags:  "TAGS_YOUTUBE",
	FieldSEOKeywords: "PALAVRAS_CHAVE_SEO",
	FieldThumbnail:   "TEXTO_THUMBNAIL",
	FieldCTAVariants: "CTA_VARIANTES",
}

var fieldNames = map[Field]string{
	FieldMainTitle:   "main_title",
	FieldAltTitles:   "alt_titles",
	FieldDescription: "description",
	FieldHashtags:    "hashtags",
	FieldScript:      "script",
	FieldKeyPoints:   "key_points",
	FieldSearchTags:  "search_tags",
	FieldSEOKeywords: "seo_keywords",
	FieldThumbnail:   "thumbnail_text",
	FieldCTAVariants: "cta_variants",
}

// ParseField resolves a wire key (TITULO_PRINCIPAL) or a snake_case name (main_title).
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for _, f := range AllFields {
		if strings.EqualFold(s, fieldKeys[f]) || strings.EqualFold(s, fieldNames[f]) {
			return f, nil
		}
	}
	return 0, errors.NewUnknownField(s)
}

// ParseFields resolves a list of names, rejecting unknown ones and dropping repeats.
func ParseFields(names []string) ([]Field, error) {
	out := make([]Field, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		f, err := ParseField(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	_, ok := fieldKeys[f]
	return ok
}

// Key returns the wire key used in model output and exports.
func (f Field) Key() string {
	return fieldKeys[f]
}

// Name returns the snake_case name used by the CLI and HTTP API.
func (f Field) Name() string {
	return fieldNames[f]
}

// String implements fmt.Stringer.
func (f Field) String() string {
	if k, ok := fieldKeys[f]; ok {
		return k
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Kind reports whether f holds text or a list.
func (f Field) Kind() Kind {
	switch f {
	case FieldMainTitle, FieldDescription, FieldScript, FieldThumbnail:
		return KindText
	case FieldAltTitles, FieldHashtags, FieldKeyPoints, FieldSearchTags, FieldSEOKeywords, FieldCTAVariants:
		return KindList
	}
	return KindNone
}

// Optional reports whether f may be absent from a valid bundle.
func (f Field) Optional() bool {
	switch f {
	case FieldSearchTags, FieldSEOKeywords, FieldThumbnail, FieldCTAVariants:
		return true
	}
	return false
}

// MarshalText encodes f as its wire key.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid field %d", int(f))
	}
	return []byte(f.Key()), nil
}

// UnmarshalText decodes a wire key or snake_case name.
func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Get returns the value of f. Optional fields that are unset yield an absent Value.
func (c *Content) Get(f Field) Value {
	switch f {
	case FieldMainTitle:
		return Text(c.MainTitle)
	case FieldAltTitles:
		return List(c.AltTitles)
	case FieldDescription:
		return Text(c.Description)
	case FieldHashtags:
		return List(c.Hashtags)
	case FieldScript:
		return Text(c.Script)
	case FieldKeyPoints:
		return List(c.KeyPoints)
	case FieldSearchTags:
		return optionalList(c.SearchTags)
	case FieldSEOKeywords:
		return optionalList(c.SEOKeywords)
	case FieldThumbnail:
		if c.ThumbnailText == "" {
			return Value{}
		}
		return Text(c.ThumbnailText)
	case FieldCTAVariants:
		return optionalList(c.CTAVariants)
	}
	return Value{}
}

// Set overwrites f with v. The value kind must match the field; an absent
// value clears optional fields and is rejected for required ones.
func (c *Content) Set(f Field, v Value) error {
	if !f.Valid() {
		return errors.NewValidation(fmt.Sprintf("invalid field %d", int(f)))
	}
	if v.IsZero() {
		if !f.Optional() {
			return errors.NewValidation(f.Key() + " cannot be cleared")
		}
	} else if v.Kind() != f.Kind() {
		return errors.NewValidation(fmt.Sprintf("%s expects a %s value", f.Key(), f.Kind()))
	}

	switch f {
	case FieldMainTitle:
		c.MainTitle = v.text
	case FieldAltTitles:
		c.AltTitles = slices.Clone(v.list)
	case FieldDescription:
		c.Description = v.text
	case FieldHashtags:
		c.Hashtags = slices.Clone(v.list)
	case FieldScript:
		c.Script = v.text
	case FieldKeyPoints:
		c.KeyPoints = slices.Clone(v.list)
	case FieldSearchTags:
		c.SearchTags = slices.Clone(v.list)
	case FieldSEOKeywords:
		c.SEOKeywords = slices.Clone(v.list)
	case FieldThumbnail:
		c.ThumbnailText = v.text
	case FieldCTAVariants:
		c.CTAVariants = slices.Clone(v.list)
	}
	return nil
}

func optionalList(items []string) Value {
	if items == nil {
		return Value{}
	}
	return List(items)
}

// Kind is the shape of a field value.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	}
	return "none"
}

// Value is a field value: absent, a text, or an ordered list of strings.
type Value struct {
	kind Kind
	text string
	list []string
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// List returns a list value holding a copy of items.
func List(items []string) Value {
	list := slices.Clone(items)
	if list == nil {
		list = []string{}
	}
	return Value{kind: KindList, list: list}
}

// Kind returns the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is absent.
func (v Value) IsZero() bool { return v.kind == KindNone }

// AsText returns the text and whether v is a text value.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsList returns a copy of the list and whether v is a list value.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindList:
		return slices.Equal(v.list, o.list)
	}
	return true
}

// String renders v for display; lists are joined with " | ".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindList:
		return strings.Join(v.list, " | ")
	}
	return ""
}

// MarshalJSON encodes text as a JSON string, lists as arrays, absent as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindList:
		return json.Marshal(v.list)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "null":
		*v = Value{}
		return nil
	case strings.HasPrefix(trimmed, "["):
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*v = List(list)
		return nil
	default:
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
}
