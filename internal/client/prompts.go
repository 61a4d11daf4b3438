package client

import "encoding/json"

// FlashcardSystemPrompt instructs the model to emit study flashcards from a
// block of source text.
const FlashcardSystemPrompt = `You are an assistant that creates study flashcards from source text.

Rules:
1. Generate between 3 and 15 flashcards covering the key facts and concepts of the text.
2. Each flashcard has a "front" (a question or term, at most 200 characters) and a "back" (the answer or definition, at most 500 characters).
3. Write the flashcards in the same language as the source text.
4. Do not invent facts that are not present in the text.
5. Prefer atomic cards: one fact per card.`

// FlashcardSchemaName names the structured response format.
const FlashcardSchemaName = "flashcard_proposals"

// FlashcardSchema is the JSON schema for the structured generation response.
var FlashcardSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"flashcards": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"front": {"type": "string", "maxLength": 200},
					"back": {"type": "string", "maxLength": 500}
				},
				"required": ["front", "back"],
				"additionalProperties": false
			}
		}
	},
	"required": ["flashcards"],
	"additionalProperties": false
}`)

// ProposalsPayload is the shape the model is asked to return.
type ProposalsPayload struct {
	Flashcards []ProposalContent `json:"flashcards"`
}

type ProposalContent struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}
