package content

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/reelcraft/internal/errors"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"YouTube", PlatformYouTube, false},
		{"youtube", PlatformYouTube, false},
		{"TikTok", PlatformTikTok, false},
		{"Instagram Reels", PlatformInstagram, false},
		{"reels", PlatformInstagram, false},
		{"vimeo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				require.True(t, errors.Is(err, errors.ErrValidation))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPlatformClassification(t *testing.T) {
	require.True(t, PlatformYouTube.LongForm())
	require.False(t, PlatformYouTube.ShortForm())
	require.True(t, PlatformTikTok.ShortForm())
	require.True(t, PlatformInstagram.ShortForm())
	require.Equal(t, 60, ConfigFor(PlatformYouTube).TitleMaxLength)
	require.Equal(t, 7, ConfigFor(PlatformTikTok).HashtagCount)
}

func TestRequest_Validate(t *testing.T) {
	base := Request{Action: ActionNew, Platform: PlatformTikTok, Topic: "investir em ações"}
	existing := sampleContent()

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid new", func(r *Request) {}, false},
		{"empty action defaults to new", func(r *Request) { r.Action = "" }, false},
		{"blank topic", func(r *Request) { r.Topic = "   " }, true},
		{"bad platform", func(r *Request) { r.Platform = "Vimeo" }, true},
		{"bad tone", func(r *Request) { r.Tone = "sarcastic" }, true},
		{"variation without content", func(r *Request) { r.Action = ActionVariation }, true},
		{"variation with content", func(r *Request) { r.Action = ActionVariation; r.Existing = existing }, false},
		{"refine without field", func(r *Request) { r.Action = ActionRefine; r.Existing = existing }, true},
		{"refine with field", func(r *Request) {
			r.Action = ActionRefine
			r.Existing = existing
			r.TargetField = FieldScript
		}, false},
		{"batch without fields", func(r *Request) { r.Action = ActionBatch; r.Existing = existing }, true},
		{"batch with fields", func(r *Request) {
			r.Action = ActionBatch
			r.Existing = existing
			r.TargetFields = []Field{FieldHashtags}
		}, false},
		{"unknown action", func(r *Request) { r.Action = "DELETE" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				require.True(t, errors.Is(err, errors.ErrValidation), "got %v", err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRequest_Defaults(t *testing.T) {
	r := Request{Platform: PlatformTikTok, Duration: "30-segundos"}
	require.Equal(t, DefaultLanguage, r.Lang())
	require.Equal(t, 30, r.Seconds())
	require.True(t, r.ShortForm())

	r.Language = "en-US"
	require.Equal(t, "en-US", r.Lang())
}

func TestActionLabel(t *testing.T) {
	require.Equal(t, "NOVO", ActionNew.Label())
	require.Equal(t, "REGENERAR_VARIACAO", ActionVariation.Label())
	require.Equal(t, "REFINAR_CAMPO", ActionRefine.Label())
	require.Equal(t, "REFINAR_LOTE", ActionBatch.Label())
}

func TestNewImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	img, err := NewImage(png, "")
	require.NoError(t, err)
	require.Equal(t, "image/png", img.MIMEType)

	img, err = NewImage(png, " image/webp ")
	require.NoError(t, err)
	require.Equal(t, "image/webp", img.MIMEType)

	_, err = NewImage([]byte("só texto"), "")
	require.True(t, errors.Is(err, errors.ErrValidation))

	_, err = NewImage(nil, "image/png")
	require.True(t, errors.Is(err, errors.ErrValidation))
}
