package schema

import "github.com/flashgen/flashgen-api/internal/domain"

// Schema names registered with the provider's structured-output envelope.
const (
	NameFlashcard           = "flashcard"
	NameFlashcardCollection = "flashcard_collection"
	NameMultipleChoice      = "multiple_choice_question"
	NameTrueFalse           = "true_false_question"
	NameFillInBlank         = "fill_in_blank_question"
	NameMatching            = "matching_exercise"
)

// Flashcard is the schema for a single front/back pair.
func Flashcard() *Definition {
	return &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"front": {
				Type:        TypeString,
				Description: "Question or cue shown to the learner",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(domain.MaxProposalFrontLength),
			},
			"back": {
				Type:        TypeString,
				Description: "Answer or explanation revealed on flip",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(domain.MaxProposalBackLength),
			},
		},
		Required:             []string{"front", "back"},
		AdditionalProperties: boolPtr(false),
	}
}

// FlashcardCollection is the schema for a bounded set of front/back pairs.
// This is the only catalog entry the generation pipeline uses.
func FlashcardCollection(minItems, maxItems int) *Definition {
	return &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"flashcards": {
				Type:     TypeArray,
				Items:    Flashcard(),
				MinItems: intPtr(minItems),
				MaxItems: intPtr(maxItems),
			},
		},
		Required:             []string{"flashcards"},
		AdditionalProperties: boolPtr(false),
	}
}

// MultipleChoice is the schema for a question with one correct option.
func MultipleChoice() *Definition {
	return &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"question": {Type: TypeString, MinLength: intPtr(1)},
			"options": {
				Type:     TypeArray,
				Items:    &Definition{Type: TypeString, MinLength: intPtr(1)},
				MinItems: intPtr(2),
				MaxItems: intPtr(6),
			},
			"correct_index": {Type: TypeInteger, Minimum: floatPtr(0), Maximum: floatPtr(5)},
			"explanation":   {Type: TypeString},
		},
		Required:             []string{"question", "options", "correct_index"},
		AdditionalProperties: boolPtr(false),
	}
}

// TrueFalse is the schema for a true/false statement.
func TrueFalse() *Definition {
	return &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"statement":   {Type: TypeString, MinLength: intPtr(1)},
			"answer":      {Type: TypeBoolean},
			"explanation": {Type: TypeString},
		},
		Required:             []string{"statement", "answer"},
		AdditionalProperties: boolPtr(false),
	}
}

// FillInBlank is the schema for a cloze-deletion exercise.
func FillInBlank() *Definition {
	return &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"text": {
				Type:        TypeString,
				Description: "Sentence with the blank marked as ___",
				MinLength:   intPtr(1),
			},
			"answer": {Type: TypeString, MinLength: intPtr(1)},
		},
		Required:             []string{"text", "answer"},
		AdditionalProperties: boolPtr(false),
	}
}

// Matching is the schema for a left/right pairing exercise.
func Matching() *Definition {
	pair := &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"left":  {Type: TypeString, MinLength: intPtr(1)},
			"right": {Type: TypeString, MinLength: intPtr(1)},
		},
		Required:             []string{"left", "right"},
		AdditionalProperties: boolPtr(false),
	}
	return &Definition{
		Type: TypeObject,
		Properties: map[string]*Definition{
			"pairs": {
				Type:     TypeArray,
				Items:    pair,
				MinItems: intPtr(3),
				MaxItems: intPtr(10),
			},
		},
		Required:             []string{"pairs"},
		AdditionalProperties: boolPtr(false),
	}
}
