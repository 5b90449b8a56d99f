package generation

import (
	"fmt"
	"strings"

	"github.com/flashgen/flashgen-api/internal/domain"
	"github.com/flashgen/flashgen-api/internal/llm"
)

// promptSystemMessage frames the model as a flashcard author. Kept apart
// from the user prompt so the cache key distinguishes the two.
const promptSystemMessage = "You are an expert educator who writes concise, " +
	"high-quality study flashcards from source material. You respond only " +
	"with strict JSON, no prose and no markdown."

// buildPrompt renders the user message instructing the model to emit exactly
// count front/back pairs as JSON conforming to the flashcard-collection
// schema.
func buildPrompt(sourceText string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create exactly %d flashcards from the source text below.\n\n", count)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Each front is a clear question or cue, at most %d characters.\n", domain.MaxProposalFrontLength)
	fmt.Fprintf(&b, "- Each back is a complete, self-contained answer, at most %d characters.\n", domain.MaxProposalBackLength)
	b.WriteString("- Cover the most important facts and concepts; avoid trivia and duplication.\n")
	b.WriteString("- Use the language of the source text.\n")
	b.WriteString("- Respond with strict JSON of the form " +
		`{"flashcards":[{"front":"...","back":"..."}]}` + " and nothing else.\n\n")
	b.WriteString("Source text:\n\"\"\"\n")
	b.WriteString(sourceText)
	b.WriteString("\n\"\"\"")

	return b.String()
}

// promptParams are the sampling parameters for generation calls: moderate
// temperature for varied but grounded cards, bounded output size.
func promptParams() llm.Params {
	temperature := float32(0.7)
	topP := float32(1.0)
	return llm.Params{
		Temperature: &temperature,
		TopP:        &topP,
		MaxTokens:   4096,
	}
}
