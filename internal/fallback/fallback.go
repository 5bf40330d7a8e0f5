// Package fallback builds a complete content bundle from the request alone, for
// when the model is unreachable or its answer cannot be parsed.
//
// Output is deterministic and satisfies content.Lint without further repair.
package fallback

import (
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
)

const (
	shortTitleTopicMax  = 24
	shortTitleTopicCut  = 22
	shortHashtagCount   = 6
	hookTopicMax        = 60
	captionHashtagCount = 5
)

var youtubeSearchTags = []string{
	"tutorial", "guia", "iniciante", "passo a passo", "dicas", "estratégia", "erro comum", "atualizado",
}

// Synthesize returns templated content for req.
func Synthesize(req content.Request) *content.Content {
	topic := strings.TrimSpace(req.Topic)
	tags := Hashtags(topic)

	if req.ShortForm() {
		return shortForm(req, topic, tags)
	}
	return standard(req, topic, tags)
}

func shortForm(req content.Request, topic string, tags []string) *content.Content {
	hook := "Hook rápido sobre " + content.Truncate(topic, hookTopicMax)
	value := "Insight principal ou mini dica prática"
	cta := "CTA curto: segue para mais"
	description := content.Truncate(hook+" - "+value+". "+cta+"\n"+captionTags(tags), content.ShortDescriptionMax)

	return &content.Content{
		Platform:  req.Platform,
		MainTitle: shortTitle(topic),
		AltTitles: []string{
			content.CapShortTitle("Dica sobre " + topic),
			content.CapShortTitle("Pare de errar em " + topic),
		},
		Description: description,
		Hashtags:    head(tags, shortHashtagCount),
		Script: "* Hook (0-3s): " + hook + "\n" +
			"* Valor (" + content.ValueBeatLabel(req.Seconds()) + "): " + value + "\n" +
			"* CTA (últimos 2s): " + cta,
		KeyPoints: []string{
			"Hook forte inicial",
			"1 ideia central clara",
			"CTA explícito no final",
		},
	}
}

func standard(req content.Request, topic string, tags []string) *content.Content {
	c := &content.Content{
		Platform:  req.Platform,
		MainTitle: standardTitle(req.Platform, topic),
		AltTitles: []string{
			"Erro que destrói " + topic,
			"3 passos para " + topic,
		},
		Description: longDescription(topic, tags),
		Hashtags:    head(tags, len(tags)),
		Script:      longScript(topic),
		KeyPoints: []string{
			"Introdução completa sobre " + topic,
			"Conceitos fundamentais explicados",
			"Estratégias práticas demonstradas",
			"Erros comuns e como evitá-los",
			"Dicas avançadas para profissionais",
			"Conclusão com call-to-action",
		},
	}

	if req.Platform.LongForm() {
		lower := strings.ToLower(topic)
		c.SearchTags = head(youtubeSearchTags, len(youtubeSearchTags))
		c.SEOKeywords = []string{lower, lower + " dicas", lower + " para iniciantes"}
		c.ThumbnailText = "FOCO TOTAL"
		c.CTAVariants = []string{"Comenta se fez sentido", "Salva para rever depois"}
	}
	return c
}

func shortTitle(topic string) string {
	if content.CountChars(topic) > shortTitleTopicMax {
		topic = strings.TrimSpace(content.FirstChars(topic, shortTitleTopicCut))
	}
	return topic + " 🔥"
}

func standardTitle(p content.Platform, topic string) string {
	switch {
	case p.LongForm():
		return "Domine " + topic + " (Passo a Passo)"
	case p.ShortForm():
		return shortTitle(topic)
	default:
		return "Como " + topic + " na prática"
	}
}

func captionTags(tags []string) string {
	marked := make([]string, 0, captionHashtagCount)
	for _, t := range head(tags, captionHashtagCount) {
		marked = append(marked, "#"+t)
	}
	return strings.Join(marked, " ")
}

func head(items []string, n int) []string {
	return append([]string(nil), items[:min(n, len(items))]...)
}

func longDescription(topic string, tags []string) string {
	var b strings.Builder
	b.WriteString("🔥 " + topic + " EXPLICADO de forma SIMPLES e DIRETA! Se você quer aprender " +
		strings.ToLower(topic) + " do zero, este vídeo é OBRIGATÓRIO!\n\n")
	b.WriteString("⏰ TIMESTAMPS:\n")
	b.WriteString("0:00 - Introdução\n2:30 - Conceitos Básicos\n5:45 - Estratégias Práticas\n")
	b.WriteString("10:20 - Erros Comuns (EVITE!)\n15:00 - Dicas Avançadas\n20:00 - Conclusão\n\n")
	b.WriteString("💰 RECURSOS MENCIONADOS:\n")
	b.WriteString("• [Link para material gratuito]\n• [Link para curso completo]\n• [Link para comunidade]\n\n")
	b.WriteString("📈 O que você vai aprender:\n")
	b.WriteString("✅ Conceitos fundamentais\n✅ Estratégias comprovadas\n✅ Estudos de caso reais\n")
	b.WriteString("✅ Dicas de especialistas\n✅ Planilha de acompanhamento\n\n")
	b.WriteString("🚀 Não esqueça de:\n")
	b.WriteString("👍 CURTIR o vídeo\n🔔 ATIVAR as notificações\n💬 COMENTAR suas dúvidas\n📌 SE INSCREVER no canal\n\n")
	b.WriteString(captionTags(tags) + "\n\n")
	b.WriteString("⚠️ DISCLAIMER: Este vídeo é apenas informativo. Consulte profissionais qualificados.")
	return b.String()
}

func longScript(topic string) string {
	var b strings.Builder
	b.WriteString("# " + topic + ": passo a passo\n\n")
	b.WriteString("## Introdução (0:00 - 2:30)\n")
	b.WriteString("Olá pessoal! Hoje vamos falar sobre " + topic + ", um tema que muda a forma de enxergar resultados.\n\n")
	b.WriteString("Se você está começando agora ou já tem experiência, este vídeo traz ideias práticas.\n\n")
	b.WriteString("## Conceitos Básicos (2:30 - 5:45)\n")
	b.WriteString("Antes de tudo, vamos entender o que é " + topic + " e por que isso importa.\n\n")
	b.WriteString("### O que é " + topic + "?\n")
	b.WriteString(topic + " é uma oportunidade de crescimento através de conhecimento e estratégia.\n\n")
	b.WriteString("## Estratégias Práticas (5:45 - 10:20)\n")
	b.WriteString("Agora vamos para a prática com estratégias testadas.\n\n")
	b.WriteString("## Erros Comuns (10:20 - 15:00)\n")
	b.WriteString("⚠️ EVITE estes erros:\n\n• Agir sem conhecimento\n• Seguir modas passageiras\n• Desistir no primeiro obstáculo\n\n")
	b.WriteString("## Dicas Avançadas (15:00 - 20:00)\n")
	b.WriteString("Para quem quer ir além do básico...\n\n")
	b.WriteString("## Conclusão (20:00 - 22:00)\n")
	b.WriteString(topic + " pode ser sua porta de entrada. Lembre-se: consistência é fundamental!\n\n")
	b.WriteString("Curtiu? Deixe seu like, compartilhe com os amigos e se inscreva para mais conteúdos.\n\n")
	b.WriteString("Até a próxima!")
	return b.String()
}
