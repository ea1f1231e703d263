package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects published by the API.
const (
	SubjectQuizGraded   = "biotutor.quiz.graded"
	SubjectNoteReviewed = "biotutor.note.reviewed"
)

// QuizGradedEvent is emitted after an attempt has been graded and persisted.
type QuizGradedEvent struct {
	AttemptID  uint      `json:"attempt_id"`
	QuizID     uint      `json:"quiz_id"`
	StudentID  uint      `json:"student_id"`
	TopicID    uint      `json:"topic_id"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
	GradedAt   time.Time `json:"graded_at"`
}

// NoteReviewedEvent is emitted after an approval decision on a note.
type NoteReviewedEvent struct {
	NoteID     uint      `json:"note_id"`
	TopicID    uint      `json:"topic_id"`
	ReviewerID uint      `json:"reviewer_id"`
	Status     string    `json:"status"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// Publisher emits domain events over NATS. A Publisher constructed without a
// connection is a no-op, so the API runs fine with messaging disabled.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher wraps the connection; conn may be nil.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Publish marshals the payload and emits it on the subject. Publish failures
// are logged, not returned: events are best-effort and never fail a request.
func (p *Publisher) Publish(subject string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to marshal event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to publish event")
		return
	}

	p.logger.Debug().Str("subject", subject).Msg("event published")
}
