package client

import "strings"

// Flashcard sources as the API expects them.
const (
	SourceManual   = "manual"
	SourceAIFull   = "ai-full"
	SourceAIEdited = "ai-edited"
)

// Content bounds, matching the server-side validators.
const (
	FrontMaxLength = 200
	BackMaxLength  = 500
)

// Proposal is a candidate flashcard from the AI generation flow, pending
// acceptance or edit. It is never persisted as-is.
type Proposal struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	IsEdited bool   `json:"isEdited"`
	Source   string `json:"source"`
}

// Field error messages, identical to the server's.
const (
	MsgFrontRequired = "Przód fiszki jest wymagany"
	MsgFrontTooLong  = "Przód fiszki nie może przekraczać 200 znaków"
	MsgBackRequired  = "Tył fiszki jest wymagany"
	MsgBackTooLong   = "Tył fiszki nie może przekraczać 500 znaków"
)

// EditForm holds the review-edit state for one proposal. Validity is the
// conjunction of both fields being non-empty and within bounds.
type EditForm struct {
	Front  string
	Back   string
	Errors map[string]string

	source Proposal
}

// NewEditForm seeds a form from a proposal.
func NewEditForm(p Proposal) *EditForm {
	f := &EditForm{}
	f.Initialize(p)
	return f
}

// Initialize resets all fields and errors from a new proposal.
func (f *EditForm) Initialize(p Proposal) {
	f.source = p
	f.Front = p.Front
	f.Back = p.Back
	f.Errors = map[string]string{}
}

// ValidateFront checks the front field, updating its error key.
func (f *EditForm) ValidateFront() bool {
	switch {
	case strings.TrimSpace(f.Front) == "":
		f.Errors["front"] = MsgFrontRequired
	case len([]rune(f.Front)) > FrontMaxLength:
		f.Errors["front"] = MsgFrontTooLong
	default:
		delete(f.Errors, "front")
	}
	return f.Errors["front"] == ""
}

// ValidateBack checks the back field, updating its error key.
func (f *EditForm) ValidateBack() bool {
	switch {
	case strings.TrimSpace(f.Back) == "":
		f.Errors["back"] = MsgBackRequired
	case len([]rune(f.Back)) > BackMaxLength:
		f.Errors["back"] = MsgBackTooLong
	default:
		delete(f.Errors, "back")
	}
	return f.Errors["back"] == ""
}

// IsValid revalidates both fields and reports aggregate validity.
func (f *EditForm) IsValid() bool {
	frontOK := f.ValidateFront()
	backOK := f.ValidateBack()
	return frontOK && backOK
}

// EditedProposal projects the form back onto the original proposal: trimmed
// content, IsEdited set, source remapped to ai-edited. All other fields are
// preserved. Pure; no network effect.
func (f *EditForm) EditedProposal() Proposal {
	p := f.source
	p.Front = strings.TrimSpace(f.Front)
	p.Back = strings.TrimSpace(f.Back)
	p.IsEdited = true
	p.Source = SourceAIEdited
	return p
}
