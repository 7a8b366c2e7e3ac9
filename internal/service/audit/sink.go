// Package audit publishes chatter notes about pipeline records. Sinks never
// return errors to callers: a failed note is logged and dropped.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Note is one chatter message attached to a record.
type Note struct {
	Entity string    `json:"entity"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}

// Sink receives notes.
type Sink interface {
	Note(ctx context.Context, entity, body string)
}

// ZapSink writes notes to the structured log.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a sink logging at info level.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Note(_ context.Context, entity, body string) {
	s.logger.Info("chatter note", zap.String("entity", entity), zap.String("body", body))
}

// Multi fans a note out to every sink in order.
type Multi []Sink

func (m Multi) Note(ctx context.Context, entity, body string) {
	for _, s := range m {
		if s != nil {
			s.Note(ctx, entity, body)
		}
	}
}

// Recorder keeps notes in memory.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) Note(_ context.Context, entity, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Entity: entity, Body: body, At: time.Now().UTC()})
}

// Notes returns a copy of the recorded notes.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// For returns the bodies recorded against entity.
func (r *Recorder) For(entity string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notes {
		if n.Entity == entity {
			out = append(out, n.Body)
		}
	}
	return out
}
