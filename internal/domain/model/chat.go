package model

import "time"

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatTurn is one entry in a session's refinement conversation. A turn
// from the assistant may carry a proposed whole-record replacement that
// takes effect only on explicit confirmation.
type ChatTurn struct {
	Speaker  Speaker       `json:"speaker"`
	Text     string        `json:"text"`
	Proposal *ResumeRecord `json:"proposal,omitempty"`
	At       time.Time     `json:"at"`
}
