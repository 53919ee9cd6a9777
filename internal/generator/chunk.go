package generator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/avelar/studyflash/internal/models"
)

// Chunking and retrieval parameters, matching what the hosted pipeline uses.
const (
	ChunkSize    = 1000
	ChunkOverlap = 200
	TopChunks    = 4
)

// SplitText slices text into overlapping chunks of roughly size runes,
// preferring to break at whitespace near the boundary.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = ChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		cut := end
		// Avoid splitting mid-word unless there is no whitespace nearby.
		if end < len(runes) {
			for cut > start+step && !unicode.IsSpace(runes[cut-1]) {
				cut--
			}
			if cut == start+step {
				cut = end
			}
		}
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if cut >= len(runes) {
			break
		}
	}
	return chunks
}

// RankChunks orders chunks by term overlap with the topic and returns the
// content of the top k. A stand-in for the embedding similarity search the
// hosted pipeline performs; chunks with no overlap at all are still eligible
// so that small documents always contribute context.
func RankChunks(chunks []models.DocumentChunk, topic string, k int) []string {
	if len(chunks) == 0 {
		return nil
	}
	if k <= 0 {
		k = TopChunks
	}

	terms := tokenize(topic)

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{index: i, score: overlapScore(c.Content, terms)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, chunks[r.index].Content)
	}
	return out
}

func overlapScore(content string, terms map[string]struct{}) int {
	score := 0
	for _, tok := range strings.FieldsFunc(strings.ToLower(content), isSeparator) {
		if _, ok := terms[tok]; ok {
			score++
		}
	}
	return score
}

func tokenize(s string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), isSeparator) {
		if len(tok) > 2 {
			terms[tok] = struct{}{}
		}
	}
	return terms
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
