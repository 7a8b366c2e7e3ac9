package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/pkg/clients/whatsapp"
)

const sendTimeout = 20 * time.Second

// WhatsAppSink forwards notes to the operator number in the background.
type WhatsAppSink struct {
	client whatsapp.Client
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewWhatsAppSink builds a sink over a WhatsApp client.
func NewWhatsAppSink(client whatsapp.Client, logger *zap.Logger) *WhatsAppSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppSink{client: client, logger: logger}
}

func (s *WhatsAppSink) Note(ctx context.Context, entity, body string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()

		req := whatsapp.SendTextMessageRequest{Body: fmt.Sprintf("[%s] %s", entity, body)}
		if _, err := s.client.SendTextMessage(sendCtx, req); err != nil {
			s.logger.Warn("failed to forward note", zap.String("entity", entity), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight notes are sent.
func (s *WhatsAppSink) Wait() {
	s.wg.Wait()
}
