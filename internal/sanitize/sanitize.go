// Package sanitize repairs and constrains model output into a well-formed content bundle.
//
// A Sanitizer never fails: every rule has a deterministic fallback so the result
// always passes content.Lint. Randomness is only used to reorder hashtags when a
// variation came back identical to its predecessor, and its source is injected.
package sanitize

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/hpungsan/reelcraft/internal/content"
)

// Limits applied during sanitization.
const (
	shortScriptMax     = 400
	shortScriptCut     = 396
	shortHashtagMax    = 6
	hookMax            = 160
	topicInBeatMax     = 60
	searchTagMax       = 12
	seoKeywordMax      = 10
	seoKeywordMinChars = 3
	variationPrefixLen = 15
	variationPrefix    = "Novo ângulo: "
	variationSuffix    = " ✅"
	descriptionCTA     = "Segue para mais insights."
)

var bannedTitleRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:\b(?:em|in)\s+)?\b60\s?(?:segundos?|seconds?|s)\b`),
	regexp.MustCompile(`(?i)\bguia\s+completo\b`),
	regexp.MustCompile(`(?i)\bcomplete\s+guide\b`),
}

var (
	timestampLineRegex = regexp.MustCompile(`^\s*(?:\d{1,2}:\d{2}|\d{1,2}m\d{2}s)`)
	headerLineRegex    = regexp.MustCompile(`(?i)^\s*(?:#+\s*|\*+\s*)?(?:introdução|introducao|conclusão|conclusao|dicas avançadas|erros comuns|timestamps?|introduction|conclusion|advanced tips|common mistakes)\b`)
	ctaVerbRegex       = regexp.MustCompile(`(?i)\b(?:segue|siga|curte|curta|compartilha|compartilhe|comenta|comente|salva|salve|follow|share)\b`)
	hookLineRegex      = regexp.MustCompile(`(?im)^\s*\*\s*hook\b[^:\n]*:[ \t]*(.*)$`)
	markerLineRegex    = regexp.MustCompile(`^\*\*Variação(?: (\d+))?:\*\*$`)
	headingLineRegex   = regexp.MustCompile(`^\s*#`)
	sentenceSplitRegex = regexp.MustCompile(`[.!?]`)
	bulletPrefixRegex  = regexp.MustCompile(`^[\s*\-•>#]+`)
)

// Generic engagement hashtags swapped in when a variation repeats the prior set.
var hashtagPool = []string{"dica", "alerta", "hoje", "agora", "resultado", "mindset", "passoapasso", "estrategia"}

// Templates used to top up alternative titles, in order.
var altTitleTemplates = []string{
	"Como aplicar %s",
	"Erro em %s que te trava",
	"O que ninguém te conta sobre %s",
	"3 passos para %s",
	"Pare de errar em %s",
}

// Sanitizer applies the post-processing rules. It is safe for concurrent use.
type Sanitizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Sanitizer drawing shuffle randomness from src.
// A nil src seeds from the runtime's entropy.
func New(src rand.Source) *Sanitizer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Sanitizer{rng: rand.New(src)}
}

// NewSeeded returns a Sanitizer with a fixed seed, for reproducible output.
func NewSeeded(seed uint64) *Sanitizer {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sanitize returns a repaired copy of c for req. The input is not modified.
// For a variation, req.Existing is the prior content the result must diverge from.
func (s *Sanitizer) Sanitize(c *content.Content, req content.Request) *content.Content {
	out := c.Clone()
	if out == nil {
		out = &content.Content{}
	}
	out.Platform = req.Platform
	short := req.ShortForm()
	topic := strings.TrimSpace(req.Topic)

	// 1. Titles.
	out.MainTitle = cleanTitle(out.MainTitle, topic, short)
	for i, t := range out.AltTitles {
		out.AltTitles[i] = cleanTitle(t, topic, short)
	}

	// 2. Divergence from the prior variation.
	if req.Action == content.ActionVariation && req.Existing != nil {
		s.diverge(out, req.Existing)
		if short {
			out.MainTitle = content.CapShortTitle(out.MainTitle)
			for i, t := range out.AltTitles {
				out.AltTitles[i] = content.CapShortTitle(t)
			}
		}
	}

	// 3. Alternative titles.
	out.AltTitles = dedupeAltTitles(out.MainTitle, out.AltTitles, topic, short)

	// 4. Short-form compression.
	if short {
		out.Description = compressDescription(out.Description)
		out.Script = compressScript(out.Script, topic, req.Seconds())
		if len(out.Hashtags) > shortHashtagMax {
			out.Hashtags = out.Hashtags[:shortHashtagMax]
		}
	}

	// 5. Hashtags.
	out.Hashtags = normalizeHashtags(out.Hashtags)

	// 6. Platform metadata.
	out.SearchTags = normalizeSearchTags(out.SearchTags)
	out.SEOKeywords = normalizeSEOKeywords(out.SEOKeywords)
	out.ThumbnailText = normalizeThumbnail(out.ThumbnailText)
	out.CTAVariants = normalizeCTAs(out.CTAVariants)

	repairRequired(out, topic)
	return out
}

// cleanTitle strips filler phrases, replaces topic echoes, and applies the
// short-form length cap and emphasis mark.
func cleanTitle(t, topic string, short bool) string {
	out := stripBanned(t)
	if short {
		out = strings.TrimSpace(strings.TrimSuffix(out, strings.TrimSpace(content.ShortTitleMark)))
	}
	if out == "" || content.FoldKey(out) == content.FoldKey(topic) {
		out = topicTitle(topic)
	}
	if !short {
		return out
	}
	return content.CapShortTitle(out)
}

func stripBanned(t string) string {
	out := t
	for {
		prev := out
		for _, re := range bannedTitleRegexes {
			out = re.ReplaceAllString(out, "")
		}
		out = content.CollapseSpaces(out)
		if out == prev {
			return out
		}
	}
}

func topicTitle(topic string) string {
	if t := stripBanned(topic); t != "" {
		return "Segredo de " + t
	}
	return "Segredo revelado"
}

// diverge forces titles, hashtags and script away from the prior content.
func (s *Sanitizer) diverge(out, prev *content.Content) {
	out.MainTitle = divergeTitle(out.MainTitle, prev.MainTitle)
	for i, t := range out.AltTitles {
		if i < len(prev.AltTitles) {
			out.AltTitles[i] = divergeTitle(t, prev.AltTitles[i])
		}
	}

	if sameTagSet(out.Hashtags, prev.Hashtags) {
		out.Hashtags = s.replaceTags(out.Hashtags)
	}

	if out.Script != "" && prev.Script != "" {
		newFirst := firstLine(out.Script)
		if newFirst == firstLine(prev.Script) {
			marker := nextMarker(newFirst)
			if markerLineRegex.MatchString(newFirst) {
				out.Script = marker + strings.TrimPrefix(strings.TrimLeft(out.Script, " \t\r\n"), newFirst)
			} else {
				out.Script = marker + "\n" + out.Script
			}
		}
	}
}

func divergeTitle(newVal, oldVal string) string {
	if strings.TrimSpace(oldVal) == "" {
		return newVal
	}
	// Output of an earlier pass against the same prior value.
	if variationMarks(newVal) > variationMarks(oldVal) {
		return newVal
	}
	normNew, normOld := titleKey(newVal), titleKey(oldVal)
	same := normNew == normOld ||
		(normOld != "" && strings.HasPrefix(normNew, content.FirstChars(normOld, variationPrefixLen)))
	if !same {
		return newVal
	}
	if content.CountChars(newVal) > 10 {
		return variationPrefix + newVal
	}
	return newVal + variationSuffix
}

// variationMarks counts the leading variation prefixes and trailing variation
// suffixes on t, ignoring a short-form title mark.
func variationMarks(t string) int {
	n := 0
	for strings.HasPrefix(t, variationPrefix) {
		t = strings.TrimPrefix(t, variationPrefix)
		n++
	}
	t = strings.TrimSuffix(t, content.ShortTitleMark)
	for strings.HasSuffix(t, variationSuffix) {
		t = strings.TrimSuffix(t, variationSuffix)
		n++
	}
	return n
}

// titleKey lower-cases and keeps only letters, digits and spaces.
func titleKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func tagKey(h string) string {
	return content.FoldKey(strings.TrimLeft(strings.TrimSpace(h), "#"))
}

func sameTagSet(a, b []string) bool {
	set := func(tags []string) map[string]bool {
		m := make(map[string]bool, len(tags))
		for _, h := range tags {
			if k := tagKey(h); k != "" {
				m[k] = true
			}
		}
		return m
	}
	sa, sb := set(a), set(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if !sb[k] {
			return false
		}
	}
	return true
}

// replaceTags swaps every odd position for an unused pool tag, then shuffles.
func (s *Sanitizer) replaceTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	used := make(map[string]bool, len(out))
	for _, h := range out {
		used[tagKey(h)] = true
	}

	changed := false
	for i := 1; i < len(out); i += 2 {
		if tag := pickPoolTag(i, used); tag != "" {
			out[i] = tag
			used[tag] = true
			changed = true
		}
	}
	if !changed {
		tag := pickPoolTag(len(out), used)
		if tag == "" {
			tag = "variacao" + strconv.Itoa(len(out)+1)
		}
		out = append(out, tag)
	}

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()
	return out
}

func pickPoolTag(idx int, used map[string]bool) string {
	for k := range hashtagPool {
		tag := hashtagPool[(idx+k)%len(hashtagPool)]
		if !used[tag] {
			return tag
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// nextMarker returns the marker for a script whose first line is first.
// Repeated variations count up so consecutive copies still differ.
func nextMarker(first string) string {
	m := markerLineRegex.FindStringSubmatch(first)
	if m == nil {
		return "**Variação:**"
	}
	n := 1
	if m[1] != "" {
		n, _ = strconv.Atoi(m[1])
	}
	return "**Variação " + strconv.Itoa(n+1) + ":**"
}

// dedupeAltTitles drops blanks and case-insensitive repeats, then tops the list
// up to content.MinAltTitles from templates.
func dedupeAltTitles(main string, alts []string, topic string, short bool) []string {
	seen := map[string]bool{content.FoldKey(main): true}
	out := make([]string, 0, max(len(alts), content.MinAltTitles))
	add := func(t string) {
		key := content.FoldKey(t)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, t)
	}

	for _, t := range alts {
		add(strings.TrimSpace(t))
	}
	for _, tmpl := range altTitleTemplates {
		if len(out) >= content.MinAltTitles {
			return out
		}
		add(cleanTitle(strings.Replace(tmpl, "%s", topic, 1), topic, short))
	}
	for n := 2; len(out) < content.MinAltTitles; n++ {
		add(cleanTitle("Parte "+strconv.Itoa(n)+": "+topic, topic, short))
	}
	return out
}

// compressDescription drops timestamp and section-header lines, collapses the
// rest to one line within the short-form cap, and guarantees a call to action.
func compressDescription(desc string) string {
	var kept []string
	for _, line := range strings.Split(desc, "\n") {
		if timestampLineRegex.MatchString(line) || headerLineRegex.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	compact := content.CollapseSpaces(strings.Join(kept, " "))
	if compact == "" {
		return descriptionCTA
	}

	cut := content.Truncate(compact, content.ShortDescriptionMax)
	if ctaVerbRegex.MatchString(cut) {
		return cut
	}
	suffix := " | " + descriptionCTA
	return content.Truncate(compact, content.ShortDescriptionMax-content.CountChars(suffix)) + suffix
}

// compressScript rewrites a script into exactly three beats: hook, value, CTA.
// A leading variation marker line survives the rewrite.
func compressScript(script, topic string, secs int) string {
	var b strings.Builder
	if first := firstLine(script); markerLineRegex.MatchString(first) {
		b.WriteString(first)
		b.WriteByte('\n')
	}
	b.WriteString("* Hook (0-3s): ")
	b.WriteString(extractHook(script))
	b.WriteString("\n* Valor (")
	b.WriteString(content.ValueBeatLabel(secs))
	b.WriteString("): Ideia central: ")
	b.WriteString(content.Truncate(topic, topicInBeatMax))
	b.WriteString("\n* CTA: segue e envia para alguém que precisa.")

	out := b.String()
	if content.CountChars(out) > shortScriptMax {
		out = content.Truncate(out, shortScriptCut)
	}
	return out
}

// extractHook reuses an existing hook beat, or else takes the first sentence of
// the script body.
func extractHook(script string) string {
	if m := hookLineRegex.FindStringSubmatch(script); m != nil {
		if h := strings.TrimSpace(m[1]); h != "" {
			return content.Truncate(h, hookMax)
		}
	}

	var body []string
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" ||
			timestampLineRegex.MatchString(trimmed) ||
			headingLineRegex.MatchString(trimmed) ||
			headerLineRegex.MatchString(trimmed) ||
			markerLineRegex.MatchString(trimmed) {
			continue
		}
		body = append(body, trimmed)
	}
	for _, sentence := range sentenceSplitRegex.Split(strings.Join(body, " "), -1) {
		s := bulletPrefixRegex.ReplaceAllString(sentence, "")
		s = content.CollapseSpaces(strings.ReplaceAll(s, "**", ""))
		if s != "" {
			return content.Truncate(s, hookMax)
		}
	}
	return "Gancho direto"
}

func normalizeHashtags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, h := range tags {
		h = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(h), "# \t"))
		key := content.FoldKey(h)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

func normalizeSearchTags(tags []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(t), "#")))
		if content.CountChars(t) <= 1 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == searchTagMax {
			break
		}
	}
	return out
}

func normalizeSEOKeywords(keywords []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		key := content.FoldKey(k)
		if content.CountChars(k) < seoKeywordMinChars || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
		if len(out) == seoKeywordMax {
			break
		}
	}
	return out
}

func normalizeThumbnail(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	words := strings.Fields(b.String())
	if len(words) > content.ThumbnailMaxWords {
		words = words[:content.ThumbnailMaxWords]
	}
	out := strings.ToUpper(strings.Join(words, " "))
	return strings.TrimSpace(content.FirstChars(out, content.ThumbnailMaxChars))
}

func normalizeCTAs(ctas []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range ctas {
		c = strings.TrimSpace(c)
		key := content.FoldKey(c)
		if content.CountChars(c) < content.MinCTAChars || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == content.MaxCTAVariants {
			break
		}
	}
	return out
}

// repairRequired fills required fields the model left blank.
func repairRequired(c *content.Content, topic string) {
	var points []string
	for _, p := range c.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		points = []string{
			"Ideia central sobre " + topic,
			"Exemplo prático para aplicar hoje",
			"Próximo passo para continuar",
		}
	}
	c.KeyPoints = points

	if strings.TrimSpace(c.Description) == "" {
		c.Description = "Conteúdo sobre " + topic + ". " + descriptionCTA
	}
	if strings.TrimSpace(c.Script) == "" {
		c.Script = "* Hook: " + topic + "\n* Desenvolvimento: ideia central e exemplo\n* CTA: segue para mais conteúdos."
	}
}
