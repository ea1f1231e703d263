package events_test

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
)

func TestPublisherWithoutConnectionIsNoOp(t *testing.T) {
	publisher := events.NewPublisher(nil, zerolog.New(io.Discard))

	assert.NotPanics(t, func() {
		publisher.Publish(events.SubjectQuizGraded, events.QuizGradedEvent{
			AttemptID:  1,
			QuizID:     2,
			StudentID:  3,
			Percentage: 75,
			Passed:     true,
			GradedAt:   time.Now(),
		})
	})
}

func TestNilPublisherIsSafe(t *testing.T) {
	var publisher *events.Publisher

	assert.NotPanics(t, func() {
		publisher.Publish(events.SubjectNoteReviewed, events.NoteReviewedEvent{NoteID: 1})
	})
}
