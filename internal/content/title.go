package content

import "strings"

// Short-form platform limits shared by sanitization and fallback content.
const (
	ShortTitleMax       = 38
	ShortDescriptionMax = 260

	shortTitleCut  = 36
	ShortTitleMark = " ⚡"
)

// HasEmphasis reports whether s already carries emphasis punctuation or a mark.
func HasEmphasis(s string) bool {
	return strings.ContainsAny(s, "!?🔥⚡✅")
}

// CapShortTitle fits t to the short-form title rules: over ShortTitleMax it is
// cut to 36 characters plus an ellipsis, and a title without emphasis gets
// ShortTitleMark. The result never exceeds ShortTitleMax, mark included.
func CapShortTitle(t string) string {
	if CountChars(t) > ShortTitleMax {
		t = cutTitle(t, shortTitleCut)
	}
	if HasEmphasis(t) {
		return t
	}
	if CountChars(t)+CountChars(ShortTitleMark) > ShortTitleMax {
		t = cutTitle(strings.TrimSuffix(t, Ellipsis), ShortTitleMax-CountChars(ShortTitleMark)-1)
	}
	return t + ShortTitleMark
}

func cutTitle(t string, n int) string {
	return strings.TrimRight(FirstChars(t, n), " \t,:;") + Ellipsis
}
