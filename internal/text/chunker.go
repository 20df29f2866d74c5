package text

import (
	"regexp"
	"strings"
)

var (
	paragraphRe = regexp.MustCompile(`\n{2,}`)
	sentenceRe  = regexp.MustCompile(`(?:[.!?])\s+`)
)

// Split breaks text into chunks of at most maxSize characters, preferring
// paragraph boundaries and falling back to sentence boundaries for
// paragraphs that are larger than a whole chunk. Consecutive chunks share
// roughly overlap characters of trailing context so that no chunk starts
// cold mid-thought.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paragraphs := paragraphRe.Split(text, -1)

	var chunks []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > maxSize {
			flush()
			current = nil
			currentSize = 0
			chunks = append(chunks, splitBySentence(para, maxSize, overlap)...)
			continue
		}

		if currentSize+len(para) <= maxSize {
			current = append(current, para)
			currentSize += len(para) + 2
			continue
		}

		flush()

		// Carry the tail paragraphs of the finished chunk into the next one
		// as overlap context.
		carry := overlapTail(current, overlap)
		current = append(carry, para)
		currentSize = 0
		for _, p := range current {
			currentSize += len(p) + 2
		}
	}

	flush()
	return chunks
}

// splitBySentence handles a single oversized paragraph.
func splitBySentence(para string, maxSize, overlap int) []string {
	sentences := splitSentences(para)

	var chunks []string
	var current []string
	currentSize := 0

	for _, sentence := range sentences {
		if currentSize+len(sentence) <= maxSize || len(current) == 0 {
			current = append(current, sentence)
			currentSize += len(sentence) + 1
			continue
		}

		chunks = append(chunks, strings.Join(current, " "))

		// Keep a few trailing sentences for overlap.
		keep := len(current) - overlap/10
		if keep < 0 {
			keep = 0
		}
		current = append([]string{}, current[keep:]...)
		currentSize = 0
		for _, s := range current {
			currentSize += len(s) + 1
		}

		current = append(current, sentence)
		currentSize += len(sentence) + 1
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences cuts on sentence-ending punctuation followed by whitespace,
// keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	var out []string
	last := 0
	for _, loc := range locs {
		// loc[0]+1 keeps the terminator character.
		out = append(out, strings.TrimSpace(text[last:loc[0]+1]))
		last = loc[1]
	}
	if last < len(text) {
		tail := strings.TrimSpace(text[last:])
		if tail != "" {
			out = append(out, tail)
		}
	}
	return out
}

// overlapTail returns the trailing paragraphs of a finished chunk whose
// combined length fits within the overlap size.
func overlapTail(paragraphs []string, overlap int) []string {
	var tail []string
	size := 0
	for i := len(paragraphs) - 1; i >= 0; i-- {
		p := paragraphs[i]
		if size+len(p) > overlap {
			break
		}
		tail = append([]string{p}, tail...)
		size += len(p) + 2
	}
	return tail
}
