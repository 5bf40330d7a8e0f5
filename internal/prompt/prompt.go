// Package prompt turns a generation request into the instruction text sent to the model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
)

// Short-form word budget, roughly three spoken words per second.
const (
	wordsPerSecond = 3
	minWordBudget  = 40
	maxWordBudget  = 110
)

var languageNames = map[string]string{
	"pt-BR": "Português (Brasil)",
	"en-US": "English (US)",
	"es-ES": "Español (ES)",
}

const persona = `Você é um especialista em marketing digital e roteiros virais para YouTube, TikTok e Instagram Reels.

FORMATO DE SAÍDA: responda com UM único objeto JSON válido e nada mais. Comece com { e termine com }. Sem markdown, sem comentários.

ESTRUTURA JSON OBRIGATÓRIA:
{
  "PLATAFORMA_ALVO_GERADA": "YouTube|TikTok|Instagram Reels",
  "TITULO_PRINCIPAL": "título otimizado para a plataforma",
  "TITULOS_ALTERNATIVOS": ["título 2", "título 3"],
  "DESCRICAO_LEGENDA": "descrição com gancho e CTA",
  "HASHTAGS_TAGS": ["hashtag1", "hashtag2", "hashtag3"],
  "ROTEIRO": "roteiro em markdown com gancho, desenvolvimento e encerramento",
  "PONTOS_CHAVE_DO_VIDEO": ["ponto 1", "ponto 2", "ponto 3"],
  "TAGS_YOUTUBE"?: ["tag1", "tag2"],
  "PALAVRAS_CHAVE_SEO"?: ["keyword primária", "keyword secundária"],
  "TEXTO_THUMBNAIL"?: "2-4 palavras de alto impacto",
  "CTA_VARIANTES"?: ["chamada 1", "chamada 2"]
}

REGRAS PARA TÍTULOS:
- TITULO_PRINCIPAL criativo, com benefício claro; nunca apenas o tema repetido.
- TITULOS_ALTERNATIVOS com estruturas diferentes entre si (pergunta, urgência, número, curiosidade, desconstrução).
- No máximo 1 emoji por título.

DIRETRIZES POR PLATAFORMA:
- YouTube: títulos até 60 caracteres, descrição longa otimizada para SEO, 8-10 hashtags.
- TikTok/Instagram Reels: títulos até 30 caracteres, gancho nos primeiros 3 segundos, 5-7 hashtags.
- Roteiro sempre com gancho forte, desenvolvimento e CTA.`

// Build returns the instruction text for req. The output depends only on req.
func Build(req content.Request) string {
	var b strings.Builder
	secs := req.Seconds()
	shortForm := req.ShortForm()

	b.WriteString(persona)
	b.WriteString("\n\n")

	b.WriteString("ENTRADA_DO_USUARIO:\n")
	line(&b, "TIPO_DE_ACAO", req.Action.Label())
	line(&b, "PLATAFORMA_ALVO", string(req.Platform))
	line(&b, "TEMA_PRINCIPAL", req.Topic)
	line(&b, "PALAVRAS_CHAVE_FOCO", req.Keywords)
	line(&b, "TOM_DE_VOZ", string(toneOrDefault(req.Tone)))
	line(&b, "DURACAO_ESTIMADA_VIDEO", req.Duration)
	if secs > 0 {
		fmt.Fprintf(&b, "DURACAO_EM_SEGUNDOS: %d\n", secs)
	}

	lang := req.Lang()
	if lang != content.DefaultLanguage {
		line(&b, "LINGUA_ALVO", lang)
		fmt.Fprintf(&b, "INSTRUCAO_IDIOMA: Produza TODO o texto (títulos, descrição, roteiro, CTAs) em %s. "+
			"Mantenha nomes próprios e marcas no original. Não misture idiomas.\n", languageName(lang))
	} else {
		line(&b, "LINGUA_ALVO", lang+" (padrão)")
	}

	if req.Image != nil && len(req.Image.Data) > 0 {
		b.WriteString("IMAGEM_ANEXADA: SIM\n")
		b.WriteString("INSTRUCAO_IMAGEM:\n")
		b.WriteString("- Identifique mentalmente os elementos visuais centrais (cores, objetos, contexto, emoção).\n")
		b.WriteString("- Use no máximo 1 desses elementos no TITULO_PRINCIPAL, de forma natural.\n")
		b.WriteString("- Nunca mencione \"imagem\", \"foto\" ou \"na imagem\".\n")
		b.WriteString("- Não invente elementos que não estejam claramente visíveis.\n")
	} else {
		b.WriteString("IMAGEM_ANEXADA: NAO\n")
	}

	if req.Existing != nil {
		data, err := json.MarshalIndent(req.Existing, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "CONTEUDO_EXISTENTE: %s\n", data)
		}
	}

	switch req.Action {
	case content.ActionVariation:
		if req.Existing != nil {
			writeVariation(&b)
		}
	case content.ActionRefine:
		writeRefinement(&b, []content.Field{req.TargetField})
	case content.ActionBatch:
		writeRefinement(&b, req.TargetFields)
	}

	if instr := strings.TrimSpace(req.Instruction); instr != "" {
		line(&b, "NOVA_INSTRUCAO", instr)
	}

	b.WriteString("\nINSTRUCOES_DE_TITULO:\n")
	fmt.Fprintf(&b, "- O TITULO_PRINCIPAL deve ser criativo e ligado ao tema %q.\n", req.Topic)
	cfg := content.ConfigFor(req.Platform)
	fmt.Fprintf(&b, "- Limite do título principal: %d caracteres.\n", cfg.TitleMaxLength)
	b.WriteString("- TITULOS_ALTERNATIVOS completamente diferentes entre si e do principal.\n")
	if shortForm {
		b.WriteString("- PROIBIDO usar \"em 60 segundos\", \"60s\", \"em 30s\" ou \"guia completo\".\n")
	}

	if req.Platform.LongForm() {
		b.WriteString("\nCAMPOS_ADICIONAIS_YOUTUBE:\n")
		b.WriteString("- TAGS_YOUTUBE: 8-12 tags curtas, sem #, relevantes para busca.\n")
		b.WriteString("- PALAVRAS_CHAVE_SEO: 5-8 keywords estratégicas, incluindo long-tail.\n")
		b.WriteString("- TEXTO_THUMBNAIL: 2-4 palavras de impacto, sem emojis nem pontuação.\n")
		b.WriteString("- CTA_VARIANTES: 2-3 chamadas diferentes.\n")
	} else {
		b.WriteString("\nCAMPOS_ADICIONAIS_GERAIS:\n")
		b.WriteString("- Se fizer sentido, inclua CTA_VARIANTES com 2 chamadas de engajamento diferentes.\n")
	}

	if shortForm {
		writeShortForm(&b, secs)
	}

	b.WriteString("\nIMPORTANTE: responda APENAS com o JSON. Nenhum texto antes ou depois.")
	return b.String()
}

// WordBudget returns the short-form script word budget for a duration in seconds.
func WordBudget(secs int) int {
	return max(minWordBudget, min(secs*wordsPerSecond, maxWordBudget))
}

func writeVariation(b *strings.Builder) {
	b.WriteString("INSTRUCAO_VARIACAO: Gere uma NOVA variação sem repetir literalmente títulos, hashtags, " +
		"estrutura de roteiro ou pontos-chave anteriores. Use outro ângulo retórico: " +
		"dor > solução, mito > verdade, número específico, alerta, estudo de caso ou provocação. " +
		"Mantenha coerência com o tema.\n")
	b.WriteString("REGRAS_VARIACAO:\n")
	b.WriteString("- Títulos com sintaxe totalmente nova; não repita as 3 primeiras palavras.\n")
	b.WriteString("- Reescreva o gancho do roteiro com abordagem distinta.\n")
	b.WriteString("- Hashtags: embaralhe e troque 40-60% por correlatas.\n")
}

func writeRefinement(b *strings.Builder, fields []content.Field) {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Valid() {
			keys = append(keys, f.Key())
		}
	}
	if len(keys) == 1 {
		line(b, "CAMPO_ALVO", keys[0])
	} else {
		line(b, "CAMPOS_ALVO", strings.Join(keys, ", "))
	}
	b.WriteString("INSTRUCAO_REFINAMENTO: Reescreva somente o(s) campo(s) alvo conforme NOVA_INSTRUCAO. " +
		"Copie os demais campos de CONTEUDO_EXISTENTE sem alterações e devolva o JSON completo.\n")
	for _, f := range fields {
		if f == content.FieldMainTitle {
			b.WriteString("- Ao refinar TITULO_PRINCIPAL, ajuste TITULOS_ALTERNATIVOS para continuarem diferentes do novo título.\n")
			break
		}
	}
}

func writeShortForm(b *strings.Builder, secs int) {
	fmt.Fprintf(b, "\nMODO_CURTA_DURACAO: SIM (<= %ds)\n", secs)
	fmt.Fprintf(b, "- ROTEIRO em 3 blocos: HOOK (0-3s), VALOR (%s), CTA (últimos 2-3s).\n", content.ValueBeatLabel(secs))
	fmt.Fprintf(b, "- ROTEIRO enxuto e falável, no máximo ~%d palavras.\n", WordBudget(secs))
	b.WriteString("- PROIBIDO timestamps de minutos ou seções longas (ex: 0:00, 2:30 -).\n")
	b.WriteString("- DESCRICAO_LEGENDA: 1-2 frases + CTA, sem lista de timestamps.\n")
	fmt.Fprintf(b, "- Nada de promessas incompatíveis com %ds; transmita 1 ideia central.\n", secs)
}

func line(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s: %q\n", key, value)
}

func toneOrDefault(t content.Tone) content.Tone {
	if t == "" {
		return content.Tones[0]
	}
	return t
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}
