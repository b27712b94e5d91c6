package knowledge

import "strings"

// Token limits are approximate BPE tokens; estimateTokens applies a 1.3x
// multiplier to the word count.
const (
	defaultTokenLimit   = 500
	defaultTokenOverlap = 50
	minChunkTokens      = 10
	bpeMultiplier       = 1.3
)

func estimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * bpeMultiplier)
}

// ChunkText splits a document into overlapping word-window chunks sized in
// approximate tokens. Paragraph boundaries are preserved where possible:
// paragraphs below the limit stay intact, oversized ones are windowed.
func ChunkText(content string, tokenLimit, tokenOverlap int) []string {
	if tokenLimit <= 0 {
		tokenLimit = defaultTokenLimit
	}
	if tokenOverlap < 0 || tokenOverlap >= tokenLimit {
		tokenOverlap = defaultTokenOverlap
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		text := strings.TrimSpace(current.String())
		if estimateTokens(text) >= minChunkTokens {
			chunks = append(chunks, text)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if estimateTokens(paragraph) > tokenLimit {
			flush()
			chunks = append(chunks, windowWords(paragraph, tokenLimit, tokenOverlap)...)
			continue
		}
		if estimateTokens(current.String())+estimateTokens(paragraph) > tokenLimit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}

func windowWords(text string, tokenLimit, tokenOverlap int) []string {
	words := strings.Fields(text)
	wordLimit := int(float64(tokenLimit) / bpeMultiplier)
	wordOverlap := int(float64(tokenOverlap) / bpeMultiplier)
	if wordLimit <= 0 {
		wordLimit = 1
	}
	if wordOverlap >= wordLimit {
		wordOverlap = wordLimit - 1
	}

	var chunks []string
	for start := 0; start < len(words); {
		end := start + wordLimit
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[start:end], " ")
		if estimateTokens(chunk) >= minChunkTokens {
			chunks = append(chunks, chunk)
		}
		if end == len(words) {
			break
		}
		start = end - wordOverlap
	}
	return chunks
}
