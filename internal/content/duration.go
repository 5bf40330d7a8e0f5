package content

import (
	"regexp"
	"strconv"
	"strings"
)

// ShortFormMaxSeconds is the longest duration that still counts as short-form.
const ShortFormMaxSeconds = 35

// maxDurationDigits bounds parsed integers so minute arithmetic cannot overflow.
const maxDurationDigits = 9

const (
	secondsUnit = `(?:s|seg|segs|segundos?|sec|secs|seconds?)`
	minutesUnit = `(?:m|min|mins|minutos?|minutes?)`
)

// Recognized duration shapes, tried in order.
var (
	bareIntRegex      = regexp.MustCompile(`^(\d+)$`)
	secondsRegex      = regexp.MustCompile(`^(\d+)[\s-]*` + secondsUnit + `$`)
	minutesRegex      = regexp.MustCompile(`^(\d+)[\s-]*` + minutesUnit + `$`)
	clockRegex        = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	compactRegex      = regexp.MustCompile(`^(\d+)m(\d{1,2})s$`)
	spacedRegex       = regexp.MustCompile(`^(\d+)[\s-]*` + minutesUnit + `[\s-]*(?:(?:e|and|y)\s+)?(\d{1,2})[\s-]*` + secondsUnit + `?$`)
	firstIntegerRegex = regexp.MustCompile(`\d+`)
)

// ParseDuration converts a free-text duration ("60-segundos", "5 min", "1:05",
// "1m30s") to seconds. It never fails: input without any integer yields 0.
func ParseDuration(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	if m := bareIntRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])
	}
	if m := secondsRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])
	}
	if m := minutesRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1]) * 60
	}
	if m := clockRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}
	if m := compactRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}
	if m := spacedRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}
	if m := firstIntegerRegex.FindString(s); m != "" {
		return atoi(m)
	}
	return 0
}

// IsShortForm reports whether a request for platform p with the given duration
// should use short-form rules: a short-video platform and 0 < seconds <= 35.
func IsShortForm(p Platform, duration string) bool {
	if !p.ShortForm() {
		return false
	}
	secs := ParseDuration(duration)
	return secs > 0 && secs <= ShortFormMaxSeconds
}

// atoi parses a run of digits, yielding 0 for values too large to be a duration.
func atoi(s string) int {
	if len(s) > maxDurationDigits {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ValueBeatLabel labels the middle beat of a three-beat short script:
// "3-Ns" for durations over 8 seconds, "meio" otherwise.
func ValueBeatLabel(secs int) string {
	if secs > 8 {
		return "3-" + strconv.Itoa(max(5, secs-3)) + "s"
	}
	return "meio"
}
