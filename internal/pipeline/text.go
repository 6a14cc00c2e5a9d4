package pipeline

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	languageExcerptRunes = 500
	maxFilenameRunes     = 120
	dateLayout           = "2006-01-02"
)

// trailingExcerpt returns the last n runes of s.
func trailingExcerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```\\s*$")

// stripCodeFence removes a code fence wrapping the whole answer.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// normalizeLanguage reduces a model answer such as "German." or
// "Language: german" to "German".
func normalizeLanguage(answer string) string {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(answer), "\n", 2)[0])
	if i := strings.LastIndex(line, ":"); i >= 0 {
		line = line[i+1:]
	}
	line = strings.TrimFunc(line, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if line == "" {
		return ""
	}
	r := []rune(strings.ToLower(line))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func sameLanguage(a, b string) bool {
	return a != "" && strings.EqualFold(normalizeLanguage(a), normalizeLanguage(b))
}

var (
	reUnsafeFilename = regexp.MustCompile(`[/\\:*?"<>|]+`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

// sanitizeFilename turns a model-proposed title into a safe file name and
// prefixes the meeting date when the title does not mention it.
func sanitizeFilename(answer string, date time.Time, fallback string) string {
	name := cleanFilename(strings.SplitN(stripCodeFence(answer), "\n", 2)[0])
	if name == "" {
		name = cleanFilename(fallback)
	}
	if name == "" {
		name = "Protocol"
	}

	if !mentionsDate(name, date) {
		name = date.Format(dateLayout) + " - " + name
	}
	if utf8.RuneCountInString(name) > maxFilenameRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxFilenameRunes]))
	}
	return name
}

// cleanFilename strips quoting and the extension and replaces path
// separators and other unsafe characters.
func cleanFilename(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "\"'`*# ")
	name = strings.TrimSuffix(name, ".docx")
	name = reUnsafeFilename.ReplaceAllString(name, "-")
	name = reSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func mentionsDate(name string, date time.Time) bool {
	for _, layout := range []string{"2006-01-02", "02.01.2006", "02.01.06", "2.1.2006"} {
		if strings.Contains(name, date.Format(layout)) {
			return true
		}
	}
	return false
}
