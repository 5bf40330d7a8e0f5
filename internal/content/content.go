// Package content defines the generation request, the generated content bundle,
// and the field identifiers used by refinement, history and export.
package content

import (
	"net/http"
	"slices"
	"strings"

	"github.com/hpungsan/reelcraft/internal/errors"
)

// DefaultLanguage is the locale assumed when a request names none.
const DefaultLanguage = "pt-BR"

// Platform is a supported target platform.
type Platform string

const (
	PlatformYouTube   Platform = "YouTube"
	PlatformTikTok    Platform = "TikTok"
	PlatformInstagram Platform = "Instagram Reels"
)

// Platforms lists the supported platforms in display order.
var Platforms = []Platform{PlatformYouTube, PlatformTikTok, PlatformInstagram}

// ParsePlatform accepts a display name or a short slug, case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch Normalize(s) {
	case "youtube", "yt":
		return PlatformYouTube, nil
	case "tiktok", "tik tok":
		return PlatformTikTok, nil
	case "instagram reels", "instagram", "reels", "ig":
		return PlatformInstagram, nil
	}
	return "", errors.NewValidation("unsupported platform: " + strings.TrimSpace(s))
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	return slices.Contains(Platforms, p)
}

// ShortForm reports whether p is a short-video platform.
func (p Platform) ShortForm() bool {
	return p == PlatformTikTok || p == PlatformInstagram
}

// LongForm reports whether p is the long-form, SEO-heavy platform.
func (p Platform) LongForm() bool {
	return p == PlatformYouTube
}

// PlatformConfig holds per-platform presentation limits.
type PlatformConfig struct {
	TitleMaxLength int
	HashtagCount   int
}

// ConfigFor returns the presentation limits for p.
func ConfigFor(p Platform) PlatformConfig {
	if p.LongForm() {
		return PlatformConfig{TitleMaxLength: 60, HashtagCount: 10}
	}
	return PlatformConfig{TitleMaxLength: 30, HashtagCount: 7}
}

// Tone is the voice requested for the copy.
type Tone string

const (
	ToneInformative  Tone = "informativo-entusiasmado"
	ToneCasual       Tone = "casual-amigavel"
	ToneProfessional Tone = "profissional-autoritativo"
	ToneFun          Tone = "divertido-energetico"
	ToneViral        Tone = "viral-provocativo"
)

// Tones lists the supported tones; the first is the default.
var Tones = []Tone{ToneInformative, ToneCasual, ToneProfessional, ToneFun, ToneViral}

// Valid reports whether t is a supported tone.
func (t Tone) Valid() bool {
	return slices.Contains(Tones, t)
}

// Action is the kind of generation call.
type Action string

const (
	ActionNew       Action = "NEW"
	ActionVariation Action = "REGENERATE_VARIATION"
	ActionRefine    Action = "REFINE_FIELD"
	ActionBatch     Action = "REFINE_BATCH"
)

// Label returns the token the prompt uses for a.
func (a Action) Label() string {
	switch a {
	case ActionVariation:
		return "REGENERAR_VARIACAO"
	case ActionRefine:
		return "REFINAR_CAMPO"
	case ActionBatch:
		return "REFINAR_LOTE"
	default:
		return "NOVO"
	}
}

// Image is an optional reference image attached to a request.
type Image struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// NewImage wraps raw image bytes. The MIME type is sniffed when mimeType is
// empty; anything that is not an image is rejected.
func NewImage(raw []byte, mimeType string) (*Image, error) {
	if len(raw) == 0 {
		return nil, errors.NewValidation("image is empty")
	}
	if mimeType = strings.TrimSpace(mimeType); mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, errors.NewValidation("reference image must be an image, got " + mimeType)
	}
	return &Image{Data: raw, MIMEType: mimeType}, nil
}

// Request is the input to one generation call.
type Request struct {
	Action       Action   `json:"action"`
	TargetField  Field    `json:"target_field,omitempty"`
	TargetFields []Field  `json:"target_fields,omitempty"`
	Platform     Platform `json:"platform"`
	Topic        string   `json:"topic"`
	Keywords     string   `json:"keywords,omitempty"`
	Tone         Tone     `json:"tone,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Language     string   `json:"language,omitempty"`
	Image        *Image   `json:"image,omitempty"`
	Existing     *Content `json:"existing,omitempty"`
	Instruction  string   `json:"instruction,omitempty"`
}

// Lang returns the request language, defaulting to pt-BR.
func (r Request) Lang() string {
	if l := strings.TrimSpace(r.Language); l != "" {
		return l
	}
	return DefaultLanguage
}

// Seconds returns the parsed duration.
func (r Request) Seconds() int {
	return ParseDuration(r.Duration)
}

// ShortForm reports whether the request is in short-form territory.
func (r Request) ShortForm() bool {
	return IsShortForm(r.Platform, r.Duration)
}

// Validate checks the request before any model call is made.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return errors.NewValidation("topic is required")
	}
	if !r.Platform.Valid() {
		return errors.NewValidation("unsupported platform: " + string(r.Platform))
	}
	if r.Tone != "" && !r.Tone.Valid() {
		return errors.NewValidation("unsupported tone: " + string(r.Tone))
	}
	switch r.Action {
	case ActionNew, "":
	case ActionVariation:
		if r.Existing == nil {
			return errors.NewValidation("variation requires existing content")
		}
	case ActionRefine:
		if !r.TargetField.Valid() {
			return errors.NewValidation("refinement requires a target field")
		}
		if r.Existing == nil {
			return errors.NewValidation("refinement requires existing content")
		}
	case ActionBatch:
		if len(r.TargetFields) == 0 {
			return errors.NewValidation("batch refinement requires at least one field")
		}
		for _, f := range r.TargetFields {
			if !f.Valid() {
				return errors.NewValidation("batch refinement names an unknown field")
			}
		}
		if r.Existing == nil {
			return errors.NewValidation("refinement requires existing content")
		}
	default:
		return errors.NewValidation("unsupported action: " + string(r.Action))
	}
	return nil
}

// Content is the generated bundle. JSON keys match the model output contract.
type Content struct {
	Platform    Platform `json:"PLATAFORMA_ALVO_GERADA"`
	MainTitle   string   `json:"TITULO_PRINCIPAL"`
	AltTitles   []string `json:"TITULOS_ALTERNATIVOS"`
	Description string   `json:"DESCRICAO_LEGENDA"`
	Hashtags    []string `json:"HASHTAGS_TAGS"`
	Script      string   `json:"ROTEIRO"`
	KeyPoints   []string `json:"PONTOS_CHAVE_DO_VIDEO"`

	SearchTags    []string `json:"TAGS_YOUTUBE,omitempty"`
	SEOKeywords   []string `json:"PALAVRAS_CHAVE_SEO,omitempty"`
	ThumbnailText string   `json:"TEXTO_THUMBNAIL,omitempty"`
	CTAVariants   []string `json:"CTA_VARIANTES,omitempty"`
}

// Clone returns a deep copy of c. A nil receiver yields nil.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	out := *c
	out.AltTitles = slices.Clone(c.AltTitles)
	out.Hashtags = slices.Clone(c.Hashtags)
	out.KeyPoints = slices.Clone(c.KeyPoints)
	out.SearchTags = slices.Clone(c.SearchTags)
	out.SEOKeywords = slices.Clone(c.SEOKeywords)
	out.CTAVariants = slices.Clone(c.CTAVariants)
	return &out
}
