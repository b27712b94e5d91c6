package leads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/barcelona-partners/voicegw/pkg/logging"
)

const (
	defaultQueueSize   = 256
	defaultWorkers     = 2
	defaultSaveTimeout = 10 * time.Second
	summaryFieldRunes  = 50

	// Defaults assigned to leads captured from calls.
	capturedLeadName   = "Voice Lead"
	capturedLeadStatus = "in_conversation"
	unknownPhone       = "unknown"
)

// LeadWriter is the subset of Store the sink needs.
type LeadWriter interface {
	Upsert(ctx context.Context, lead Lead) error
}

// Job is one pending lead write captured from a finished turn.
type Job struct {
	Phone     string
	Utterance string
	Reply     string
}

// Sink persists call summaries off the request path. Jobs are consumed by a
// fixed worker pool from a bounded channel; a full queue drops the job rather
// than block the caller. Workers use a detached context so a flushed HTTP
// response never cancels an in-flight write. With a nil writer the sink is a
// no-op: turn processing must not couple to persistence availability.
type Sink struct {
	writer   LeadWriter
	logger   logging.Logger
	jobs     chan Job
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type SinkConfig struct {
	Writer    LeadWriter
	Logger    logging.Logger
	QueueSize int
	Workers   int
}

func NewSink(cfg SinkConfig) *Sink {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	sink := &Sink{
		writer: cfg.Writer,
		logger: cfg.Logger,
		jobs:   make(chan Job, queueSize),
	}
	for i := 0; i < workers; i++ {
		sink.wg.Add(1)
		go sink.worker()
	}
	return sink
}

// Enqueue schedules a lead write without blocking. Jobs without a usable
// phone key are discarded here, before they occupy queue space.
func (s *Sink) Enqueue(job Job) {
	if s == nil {
		return
	}
	if job.Phone == "" || job.Phone == unknownPhone {
		leadSavesTotal.WithLabelValues("skipped").Inc()
		return
	}
	if s.writer == nil {
		leadSavesTotal.WithLabelValues("disabled").Inc()
		return
	}
	select {
	case s.jobs <- job:
	default:
		leadSinkDroppedTotal.Inc()
		if s.logger != nil {
			s.logger.WithField("phone", job.Phone).Warn("Lead sink queue full, dropping job")
		}
	}
}

// Close stops accepting jobs and waits for in-flight writes to finish.
func (s *Sink) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.jobs)
	})
	s.wg.Wait()
}

func (s *Sink) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		s.save(job)
	}
}

// save runs with its own timeout, detached from any request context. Every
// failure ends here: logged, counted, never surfaced.
func (s *Sink) save(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSaveTimeout)
	defer cancel()

	lead := Lead{
		Phone:   job.Phone,
		Name:    capturedLeadName,
		Status:  capturedLeadStatus,
		Summary: buildSummary(job.Utterance, job.Reply),
	}
	if err := s.writer.Upsert(ctx, lead); err != nil {
		leadSavesTotal.WithLabelValues("error").Inc()
		if s.logger != nil {
			s.logger.WithError(err).WithField("phone", job.Phone).Error("Failed to save lead")
		}
		return
	}
	leadSavesTotal.WithLabelValues("success").Inc()
	if s.logger != nil {
		s.logger.WithField("phone", job.Phone).Debug("Lead saved")
	}
}

func buildSummary(utterance, reply string) string {
	return fmt.Sprintf("User: %s | AI: %s", truncateRunes(utterance, summaryFieldRunes), truncateRunes(reply, summaryFieldRunes))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
