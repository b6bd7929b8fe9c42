package discord

import "strings"

// maxChunkChars keeps a margin under Discord's ~2000-char message cap.
const maxChunkChars = 1900

// splitMessage breaks a reply into Discord-sized chunks. The concatenation
// of the chunks is exactly the input; each chunk is at most limit runes.
// Cuts prefer a newline in the back half of the window so bullet lists do
// not break mid-line.
func splitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = maxChunkChars
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		window := string(runes[:limit])
		if idx := strings.LastIndex(window, "\n"); idx >= 0 {
			nl := len([]rune(window[:idx]))
			if nl > limit/2 {
				cut = nl + 1
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	chunks = append(chunks, string(runes))
	return chunks
}
