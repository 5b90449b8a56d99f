// Package extraction turns a raw model reply into flashcard proposals.
// It never fails: an ordered ladder of parsing strategies is tried until one
// yields cards, and the only unsolvable outcome is an empty list, which the
// caller tolerates as "fewer proposals than requested".
package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/flashgen/flashgen-api/internal/domain"
)

// Strategy is one parsing heuristic: given raw text and the expected card
// count, it returns the proposals it recognized, or nil when the text does
// not match its shape. Strategies are pure and side-effect free so new
// heuristics can be appended without touching the orchestrator.
type Strategy func(text string, expected int) []domain.CardProposal

// ladder is the ordered fallback sequence. Each entry runs only when every
// prior entry produced nothing.
var ladder = []Strategy{
	parseSchemaJSON,
	parseEmbeddedJSON,
	parseNumberedList,
	parseLabeledPairs,
	parseParagraphs,
}

// Extract runs the fallback ladder over the raw model output and returns the
// best-effort proposal list. All produced items carry source "ai-full".
func Extract(raw string, expected int) []domain.CardProposal {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	for _, strategy := range ladder {
		if proposals := strategy(text, expected); len(proposals) > 0 {
			return proposals
		}
	}

	return nil
}

// cardPayload mirrors the flashcard_collection schema.
type cardPayload struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type collectionPayload struct {
	Flashcards []cardPayload `json:"flashcards"`
}

func proposalsFromPayload(cards []cardPayload) []domain.CardProposal {
	proposals := make([]domain.CardProposal, 0, len(cards))
	for _, c := range cards {
		front := strings.TrimSpace(c.Front)
		back := strings.TrimSpace(c.Back)
		if front == "" || back == "" {
			continue
		}
		proposals = append(proposals, domain.NewCardProposal(front, back))
	}
	return proposals
}

// parseSchemaJSON reads the text as schema-conformant JSON:
// {"flashcards": [{"front": ..., "back": ...}, ...]}.
func parseSchemaJSON(text string, _ int) []domain.CardProposal {
	var payload collectionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil
	}
	return proposalsFromPayload(payload.Flashcards)
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// parseEmbeddedJSON strips markdown code fences, locates the first balanced
// {...} block, and reads it as a flashcard collection. Catches models that
// wrap valid JSON in prose or fences.
func parseEmbeddedJSON(text string, expected int) []domain.CardProposal {
	candidates := []string{}
	for _, m := range codeFenceRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	if block := firstBalancedObject(text); block != "" {
		candidates = append(candidates, block)
	}

	for _, candidate := range candidates {
		if block := firstBalancedObject(candidate); block != "" {
			candidate = block
		}
		if proposals := parseSchemaJSON(strings.TrimSpace(candidate), expected); len(proposals) > 0 {
			return proposals
		}
	}

	return nil
}

// firstBalancedObject returns the first {...} block with balanced braces,
// ignoring braces inside JSON string literals.
func firstBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}

var numberedEntryRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.+)\s*$`)

// parseNumberedList recognizes "N) question" lines each followed by an
// answer line.
func parseNumberedList(text string, _ int) []domain.CardProposal {
	lines := strings.Split(text, "\n")
	var proposals []domain.CardProposal

	for i := 0; i < len(lines); i++ {
		m := numberedEntryRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		front := strings.TrimSpace(m[1])

		// The answer is the next non-empty, non-numbered line.
		for j := i + 1; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if line == "" {
				continue
			}
			if numberedEntryRe.MatchString(lines[j]) {
				break
			}
			proposals = append(proposals, domain.NewCardProposal(front, line))
			i = j
			break
		}
	}

	return proposals
}

var frontLabelRe = regexp.MustCompile(`(?i)^\s*(?:front|question|q)\s*[:.]\s*(.+)$`)
var backLabelRe = regexp.MustCompile(`(?i)^\s*(?:back|answer|a)\s*[:.]\s*(.+)$`)

// parseLabeledPairs recognizes explicit Front:/Back: or Question:/Answer:
// line pairs.
func parseLabeledPairs(text string, _ int) []domain.CardProposal {
	var proposals []domain.CardProposal
	var front string

	for _, line := range strings.Split(text, "\n") {
		if m := frontLabelRe.FindStringSubmatch(line); m != nil {
			front = strings.TrimSpace(m[1])
			continue
		}
		if m := backLabelRe.FindStringSubmatch(line); m != nil && front != "" {
			back := strings.TrimSpace(m[1])
			if back != "" {
				proposals = append(proposals, domain.NewCardProposal(front, back))
			}
			front = ""
		}
	}

	return proposals
}

var sentenceEndRe = regexp.MustCompile(`[.!?]`)

// parseParagraphs is the last resort: each paragraph up to the expected count
// becomes one card, split at its first sentence terminator; when a paragraph
// has no terminator a generic question is synthesized from the whole text.
func parseParagraphs(text string, expected int) []domain.CardProposal {
	paragraphs := strings.Split(text, "\n\n")
	var proposals []domain.CardProposal

	for _, paragraph := range paragraphs {
		if len(proposals) >= expected {
			break
		}
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if loc := sentenceEndRe.FindStringIndex(paragraph); loc != nil && loc[1] < len(paragraph) {
			front := strings.TrimSpace(paragraph[:loc[1]])
			back := strings.TrimSpace(paragraph[loc[1]:])
			if front != "" && back != "" {
				proposals = append(proposals, domain.NewCardProposal(front, back))
				continue
			}
		}

		proposals = append(proposals, domain.NewCardProposal(
			"What is the key point of the following passage?",
			paragraph,
		))
	}

	return proposals
}
