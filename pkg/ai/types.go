package ai

import "context"

// SourceNote is an approved study note offered to the tutor as grounding
// material for its reply.
type SourceNote struct {
	NoteID  uint
	Title   string
	Topic   string
	Excerpt string
}

// DialogueTurn is one prior exchange in the conversation, oldest first.
type DialogueTurn struct {
	Role    string
	Content string
}

// TutorInput carries the student's question, conversation history, and the
// retrieved source notes.
type TutorInput struct {
	Question   string
	ClassLevel string
	History    []DialogueTurn
	Sources    []SourceNote
}

// TutorReply is the assistant's answer.
type TutorReply struct {
	Content string
}

// Tutor describes an AI model capable of answering biology questions
// grounded in provided notes.
type Tutor interface {
	Reply(ctx context.Context, input TutorInput) (TutorReply, error)
}
