package discord

import (
	"strings"
	"testing"
)

func TestSplitMessageLongAnswer(t *testing.T) {
	t.Parallel()

	answer := strings.Repeat("a", 5000)
	chunks := splitMessage(answer, 1900)

	if len(chunks) != 3 {
		t.Fatalf("expected exactly 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != answer {
		t.Fatal("chunk concatenation must equal the original answer")
	}
	for i, chunk := range chunks {
		if len([]rune(chunk)) > 1900 {
			t.Fatalf("chunk %d has %d chars, limit is 1900", i, len([]rune(chunk)))
		}
	}
}

func TestSplitMessageShortAnswer(t *testing.T) {
	t.Parallel()

	chunks := splitMessage("short reply", 1900)
	if len(chunks) != 1 || chunks[0] != "short reply" {
		t.Fatalf("expected the answer untouched, got %v", chunks)
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	t.Parallel()

	if chunks := splitMessage("", 1900); chunks != nil {
		t.Fatalf("expected no chunks for empty input, got %v", chunks)
	}
}

func TestSplitMessagePrefersNewlineBreaks(t *testing.T) {
	t.Parallel()

	answer := strings.Repeat("b", 80) + "\n" + strings.Repeat("c", 80)
	chunks := splitMessage(answer, 100)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.HasSuffix(chunks[0], "\n") {
		t.Fatalf("first chunk should end at the newline, got %q", chunks[0])
	}
	if strings.Join(chunks, "") != answer {
		t.Fatal("chunk concatenation must equal the original answer")
	}
}
