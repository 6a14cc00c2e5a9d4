package export

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
)

const (
	fontSize = 11

	// listIndent is the per-level list indentation in twentieths of a point.
	listIndent = 360
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reInline   = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__|\*(.+?)\*|\b_([^_]+?)_\b`)
	reBullet   = regexp.MustCompile(`^[\-\*\+]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
)

// markdownToDocx converts markdown text to a styled docx file. The title and
// the participant list are written as a header block.
func markdownToDocx(title string, participants []string, markdown, outputPath, font string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16, font)
	if len(participants) > 0 {
		p := doc.AddParagraph("")
		p.AddText(strings.Join(participants, ", ")).Font(font).Size(fontSize).Color("555555").Italic(true)
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])), font)
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addListItem(doc.AddParagraph(""), "•", m[1], nestLevel(line), font)
			continue
		}

		if m := reNumbered.FindStringSubmatch(trimmed); m != nil {
			addListItem(doc.AddParagraph(""), m[1]+".", m[2], nestLevel(line), font)
			continue
		}

		addRichText(doc.AddParagraph(""), trimmed, font)
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 12
	default:
		return fontSize
	}
}

// nestLevel counts two leading spaces (or one tab) as one list level.
func nestLevel(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 2
		default:
			return width / 2
		}
	}
	return width / 2
}

// addListItem writes marker and text with a hanging indent, so wrapped lines
// align with the text instead of the marker.
func addListItem(p *docx.Paragraph, marker, text string, level int, font string) {
	left := listIndent * (level + 1)
	hanging := uint64(listIndent)
	p.Indent(&ctypes.Indent{Left: &left, Hanging: &hanging})
	p.AddText(marker + " ").Font(font).Size(fontSize).Color("000000")
	addRichText(p, text, font)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64, font string) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(font).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addRichText splits text into plain, bold and italic runs.
func addRichText(p *docx.Paragraph, text, font string) {
	for _, s := range splitInline(text) {
		run := p.AddText(s.text).Font(font).Size(fontSize).Color("000000")
		if s.bold {
			run.Bold(true)
		}
		if s.italic {
			run.Italic(true)
		}
	}
}

type span struct {
	text   string
	bold   bool
	italic bool
}

func splitInline(text string) []span {
	var spans []span
	last := 0
	for _, m := range reInline.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, span{text: cleanMarkdownInline(text[last:m[0]])})
		}
		switch {
		case m[2] >= 0:
			spans = append(spans, span{text: cleanMarkdownInline(text[m[2]:m[3]]), bold: true})
		case m[4] >= 0:
			spans = append(spans, span{text: cleanMarkdownInline(text[m[4]:m[5]]), bold: true})
		case m[6] >= 0:
			spans = append(spans, span{text: cleanMarkdownInline(text[m[6]:m[7]]), italic: true})
		case m[8] >= 0:
			spans = append(spans, span{text: cleanMarkdownInline(text[m[8]:m[9]]), italic: true})
		}
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, span{text: cleanMarkdownInline(text[last:])})
	}
	return spans
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
