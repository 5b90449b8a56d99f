package domain

// Content limits for a single proposed flashcard.
const (
	MaxProposalFrontLength = 200
	MaxProposalBackLength  = 600
)

// ProposalSource identifies how a proposed flashcard came to exist.
type ProposalSource string

const (
	// ProposalSourceAIFull marks a proposal produced entirely by the model.
	// A downstream editor may promote it to ai-edited; that transition is
	// outside this service.
	ProposalSourceAIFull ProposalSource = "ai-full"

	// ProposalSourceAIEdited marks a proposal the user modified before
	// accepting.
	ProposalSourceAIEdited ProposalSource = "ai-edited"
)

// CardProposal is an AI-produced, not-yet-persisted flashcard candidate.
// It lives only for the duration of a generation request; persisting accepted
// proposals is the caller's responsibility.
type CardProposal struct {
	Front  string         `json:"front"`
	Back   string         `json:"back"`
	Source ProposalSource `json:"source"`
}

// NewCardProposal builds an ai-full proposal, truncating the front and back
// to their content limits. Truncation rather than rejection: a slightly
// overlong model answer is still a usable card.
func NewCardProposal(front, back string) CardProposal {
	return CardProposal{
		Front:  truncateRunes(front, MaxProposalFrontLength),
		Back:   truncateRunes(back, MaxProposalBackLength),
		Source: ProposalSourceAIFull,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
