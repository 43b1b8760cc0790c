// Package docx renders an analysis result as a styled Word document for
// download. The analysis text arrives as markdown (headings, bullets,
// bold), which is mapped onto docx runs.
package docx

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumber  = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// WriteReport writes title, the markdown analysis, and the full transcript
// into a docx file at outputPath.
func WriteReport(title, analysis, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	addMarkdown(doc, analysis)

	doc.AddParagraph("")
	addStyledRun(doc.AddParagraph(""), "Transcrição Completa", true, 15)
	for _, line := range strings.Split(transcript, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			p := doc.AddParagraph("")
			p.AddText(trimmed).Font(fontName).Size(fontSize).Color("000000")
		}
	}

	return doc.SaveTo(outputPath)
}

func addMarkdown(doc *docx.RootDoc, markdown string) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		if reNumber.MatchString(trimmed) {
			addRichText(doc.AddParagraph(""), trimmed)
			continue
		}
		addRichText(doc.AddParagraph(""), trimmed)
	}
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(stripInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addRichText splits a line on **bold** spans, emitting alternating plain
// and bold runs.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(stripInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(stripInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func stripInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
