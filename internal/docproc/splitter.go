package docproc

import (
	"regexp"
	"strings"
)

// sentenceEndRe matches sentence-ending punctuation followed by
// whitespace. Abbreviation handling is deliberately simple; chunk
// boundaries only need to be approximately sentence-aligned.
var sentenceEndRe = regexp.MustCompile(`[.!?]+(?:["')\]]*)\s+`)

// splitSentences splits text into sentences, trimming surrounding
// whitespace. Newlines inside a sentence are collapsed to spaces so a
// wrapped transcript line does not masquerade as a boundary.
func splitSentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(normalized, -1) {
		// Cut after the punctuation, before the whitespace.
		end := loc[1]
		for end > loc[0] && (normalized[end-1] == ' ' || normalized[end-1] == '\t') {
			end--
		}
		if s := strings.TrimSpace(normalized[last:end]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(normalized[last:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// chunkText splits text into chunks of at most size characters using
// sentence-boundary-aware windowing. Consecutive chunks share roughly
// overlap characters: the trailing sentences of one chunk are carried
// into the head of the next, so no sentence is truncated at a boundary
// when avoidable. A single sentence longer than size becomes its own
// chunk rather than being cut.
func chunkText(text string, size, overlap int) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		j := i
		curLen := 0
		for j < len(sentences) {
			add := len(sentences[j])
			if curLen > 0 {
				add++ // joining space
			}
			if curLen > 0 && curLen+add > size {
				break
			}
			curLen += add
			j++
		}

		chunks = append(chunks, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Walk back from the window end until the carried tail reaches
		// the configured overlap, rounded up to whole sentences.
		// Always advance past i to terminate.
		next := j
		if overlap > 0 {
			carried := 0
			for next > i+1 && carried < overlap {
				carried += len(sentences[next-1]) + 1
				next--
			}
		}
		i = next
	}
	return chunks
}
