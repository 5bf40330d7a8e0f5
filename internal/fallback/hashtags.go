package fallback

import (
	"regexp"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
)

const maxGenericHashtags = 9

// niche is a curated hashtag set selected when the topic matches.
type niche struct {
	name  string
	match *regexp.Regexp
	tags  []string
}

// niches are checked in order; the first match wins. Finance goes first since
// its synonyms ("saúde financeira", "educação financeira") overlap later niches.
var niches = []niche{
	{
		name:  "finance",
		match: regexp.MustCompile(`sa[uú]de\s+financeira|finan[cç]as(?:\s+pessoais)?|educa[cç][aã]o\s+financeira`),
		tags: []string{
			"saudefinanceira", "saúdefinanceira", "finanças", "financas", "financaspessoais",
			"educacaofinanceira", "liberdadefinanceira", "planejamentofinanceiro", "dinheiro",
		},
	},
	{
		name:  "investments",
		match: regexp.MustCompile(`investimentos?`),
		tags: []string{
			"investimentos", "ações", "bolsa", "mercadofinanceiro", "rendavariavel",
			"educacaofinanceira", "bolsadevalores", "corretora", "dividendos",
		},
	},
	{
		name:  "entrepreneurship",
		match: regexp.MustCompile(`empreendedorismo`),
		tags: []string{
			"empreendedorismo", "negócios", "startup", "empreendedor", "sucesso",
			"motivação", "inovação", "empreender", "negociolucrativo",
		},
	},
	{
		name:  "technology",
		match: regexp.MustCompile(`tecnologia`),
		tags: []string{
			"tecnologia", "inovação", "ia", "inteligenciaartificial", "blockchain",
			"metaverso", "futuro", "tech", "digital",
		},
	},
	{
		name:  "marketing",
		match: regexp.MustCompile(`marketing`),
		tags: []string{
			"marketing", "marketingdigital", "vendas", "publicidade", "redessociais",
			"conteudo", "branding", "growth", "estrategia",
		},
	},
	{
		name:  "health",
		match: regexp.MustCompile(`sa[uú]de`),
		tags: []string{
			"saúde", "bemestar", "fitness", "nutrição", "vidasaudavel",
			"exercicio", "dieta", "mentalidade", "autocuidado",
		},
	},
	{
		name:  "education",
		match: regexp.MustCompile(`educa[cç][aã]o`),
		tags: []string{
			"educação", "aprendizado", "conhecimento", "estudo", "desenvolvimento",
			"crescimento", "aprendizagem", "ensinamento", "formação",
		},
	},
}

var genericPool = []string{"aprendizado", "conhecimento", "dicas", "sucesso", "tendencias", "brasil"}

// Hashtags picks hashtags for topic, without the leading marker: a curated niche
// set when the topic names a known niche, otherwise tags built from the first
// two topic words plus a generic pool.
func Hashtags(topic string) []string {
	if n := matchNiche(topic); n != nil {
		return dedupe(n.tags, maxGenericHashtags)
	}

	lower := strings.ToLower(topic)
	words := strings.Fields(strings.NewReplacer("#", "", ",", " ", ".", " ").Replace(lower))
	var tags []string
	if len(words) > 0 {
		tags = append(tags, words[0])
		if len(words) > 1 {
			tags = append(tags, words[0]+words[1])
		}
	}
	tags = append(tags, genericPool...)
	return dedupe(tags, maxGenericHashtags)
}

// NicheFor returns the name of the niche topic falls into, or "" when none does.
func NicheFor(topic string) string {
	if n := matchNiche(topic); n != nil {
		return n.name
	}
	return ""
}

func matchNiche(topic string) *niche {
	lower := strings.ToLower(topic)
	for i := range niches {
		if niches[i].match.MatchString(lower) {
			return &niches[i]
		}
	}
	return nil
}

func dedupe(tags []string, limit int) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, min(len(tags), limit))
	for _, t := range tags {
		key := content.FoldKey(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
