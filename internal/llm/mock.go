package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/fallback"
)

var promptLineRegex = regexp.MustCompile(`(?m)^([A-Z_]+): (".*")$`)

// Mock answers offline with templated content built from the prompt's echoed
// request. Each call is numbered so repeated refinements yield new values.
type Mock struct {
	mu    sync.Mutex
	calls int
}

// NewMock creates an offline model.
func NewMock() *Mock {
	return &Mock{}
}

// Invoke implements generate.Model.
func (m *Mock) Invoke(ctx context.Context, prompt string, _ *content.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	fields := promptFields(prompt)
	req := content.Request{
		Topic:    fields["TEMA_PRINCIPAL"],
		Duration: fields["DURACAO_ESTIMADA_VIDEO"],
	}
	if p, err := content.ParsePlatform(fields["PLATAFORMA_ALVO"]); err == nil {
		req.Platform = p
	}
	if req.Topic == "" {
		return "", fmt.Errorf("mock: prompt carries no topic")
	}

	c := fallback.Synthesize(req)
	if n > 1 {
		tag := fmt.Sprintf("v%d", n)
		c.MainTitle = fmt.Sprintf("%s (%s)", c.MainTitle, tag)
		for i := range c.AltTitles {
			c.AltTitles[i] = fmt.Sprintf("%s (%s)", c.AltTitles[i], tag)
		}
		c.Description = tag + ": " + c.Description
		c.Script = tag + "\n" + c.Script
		c.Hashtags = append(c.Hashtags, "variacao"+strconv.Itoa(n))
		c.KeyPoints = append(c.KeyPoints, "Ponto extra "+tag)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close implements Client.
func (m *Mock) Close() error { return nil }

// promptFields extracts the quoted KEY: "value" lines the prompt builder writes.
func promptFields(prompt string) map[string]string {
	out := make(map[string]string)
	for _, m := range promptLineRegex.FindAllStringSubmatch(prompt, -1) {
		if v, err := strconv.Unquote(m[2]); err == nil {
			if _, seen := out[m[1]]; !seen {
				out[m[1]] = v
			}
		}
	}
	return out
}
