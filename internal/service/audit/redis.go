package audit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink appends notes to a Redis stream.
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewRedisSink wraps an existing client. maxLen caps the stream approximately;
// zero keeps every entry.
func NewRedisSink(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *RedisSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSink{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (s *RedisSink) Note(ctx context.Context, entity, body string) {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"entity": entity,
			"body":   body,
			"at":     time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		s.logger.Warn("redis XADD failed", zap.String("stream", s.stream), zap.String("entity", entity), zap.Error(err))
		return
	}
	s.logger.Debug("redis XADD", zap.String("stream", s.stream), zap.String("id", id))
}

// Close releases the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
