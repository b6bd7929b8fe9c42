package usecase

import (
	"strings"

	"CompetitorBot/internal/domain"
)

const defaultExcerptChars = 3000

// Assembler serializes the question and research documents into the single
// text block posted to the assistant thread. Pure and deterministic.
type Assembler struct {
	excerptChars int
}

// NewAssembler bounds per-document excerpts; excerptChars defaults to 3000.
func NewAssembler(excerptChars int) *Assembler {
	if excerptChars <= 0 {
		excerptChars = defaultExcerptChars
	}
	return &Assembler{excerptChars: excerptChars}
}

// Build renders the prompt. Without documents only the question section is
// emitted (the research-disabled mode).
func (a *Assembler) Build(question string, docs []domain.ResearchDocument) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(question)

	if len(docs) == 0 {
		return b.String()
	}

	b.WriteString("\n\nResearch Documents:\n")
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("TITLE: ")
		b.WriteString(doc.Title)
		b.WriteString("\nURL: ")
		b.WriteString(doc.URL)
		b.WriteString("\nSOURCE: ")
		b.WriteString(doc.Source)
		b.WriteString("\nEXCERPT:\n")
		b.WriteString(truncateRunes(doc.Text, a.excerptChars))
		b.WriteString("\n---")
	}

	return b.String()
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
