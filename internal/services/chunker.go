package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type resumeChunker struct{}

func NewTextChunker() TextChunker {
	return &resumeChunker{}
}

// ChunkText splits resume markdown at headings first, then packs paragraphs
// (or sentences of oversized paragraphs) into chunks of about maxChunkSize
// runes. A chunk continuing a section starts with the last overlap runes of
// the previous one.
func (rc *resumeChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var chunks []string
	for _, section := range splitSections(text) {
		chunks = append(chunks, packSection(section, maxChunkSize, overlap)...)
	}
	return chunks
}

// splitSections cuts text before every markdown heading line.
func splitSections(text string) []string {
	var sections []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") && strings.TrimSpace(current.String()) != "" {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if strings.TrimSpace(current.String()) != "" {
		sections = append(sections, current.String())
	}

	return sections
}

func packSection(section string, maxChunkSize, overlap int) []string {
	var pieces []string
	for _, para := range strings.Split(section, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) > maxChunkSize {
			pieces = append(pieces, splitIntoSentences(para)...)
			continue
		}
		pieces = append(pieces, para)
	}

	var chunks []string
	var current strings.Builder

	for _, piece := range pieces {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece)+1 > maxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
			if tail := getLastNChars(chunks[len(chunks)-1], overlap); tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(truncateRunes(piece, maxChunkSize))
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func splitIntoSentences(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var result []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}

func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
