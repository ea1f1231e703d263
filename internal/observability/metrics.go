package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	noteUploadsTotal    *prometheus.CounterVec
	noteUploadsRejected *prometheus.CounterVec
	noteUploadSeconds   prometheus.Histogram
	quizAttemptsGraded  *prometheus.CounterVec
	tutorMessagesTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biotutor_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "biotutor_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biotutor_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		noteUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biotutor_note_uploads_total",
			Help: "Number of note files accepted for storage.",
		}, []string{"file_type"})

		noteUploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biotutor_note_uploads_rejected_total",
			Help: "Number of note uploads rejected before storage.",
		}, []string{"reason"})

		noteUploadSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "biotutor_note_upload_seconds",
			Help:    "Duration of note upload handling.",
			Buckets: prometheus.DefBuckets,
		})

		quizAttemptsGraded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biotutor_quiz_attempts_graded_total",
			Help: "Number of quiz attempts graded, labelled by outcome.",
		}, []string{"outcome"})

		tutorMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biotutor_tutor_messages_total",
			Help: "Number of tutor dialogue turns stored, labelled by role.",
		}, []string{"role"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			noteUploadsTotal,
			noteUploadsRejected,
			noteUploadSeconds,
			quizAttemptsGraded,
			tutorMessagesTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// NoteUploads exposes the counter for accepted note uploads.
func NoteUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return noteUploadsTotal
}

// NoteUploadsRejected exposes the counter for rejected note uploads.
func NoteUploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return noteUploadsRejected
}

// NoteUploadLatency exposes the histogram for upload handling time.
func NoteUploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return noteUploadSeconds
}

// QuizAttemptsGraded exposes the counter for graded attempts.
func QuizAttemptsGraded() *prometheus.CounterVec {
	RegisterMetrics()
	return quizAttemptsGraded
}

// TutorMessages exposes the counter for stored tutor dialogue turns.
func TutorMessages() *prometheus.CounterVec {
	RegisterMetrics()
	return tutorMessagesTotal
}
