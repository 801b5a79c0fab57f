// Package ws feeds ingestion sessions from a WebSocket endpoint exposed
// by an extraction backend that pushes facts as it finds them.
package ws

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/coder/websocket"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/util"
	"github.com/caseboard/backend/pkg/ingest"
	"github.com/caseboard/backend/pkg/logger"
)

const (
	dialRetries = 3
	dialTimeout = 10 * time.Second
	readLimit   = 1 << 20 // facts are small, a bigger frame is a broken producer
)

// Source reads facts from one WebSocket connection. It implements
// ingest.EventSource.
type Source struct {
	url  string
	conn *websocket.Conn
}

// Dial connects to url and returns a source reading facts from it.
func Dial(ctx context.Context, url string) (*Source, error) {
	conn, err := util.RetryWithContext(ctx, dialRetries, func(ctx context.Context) (*websocket.Conn, error) {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()

		c, _, err := websocket.Dial(dialCtx, url, nil)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	conn.SetReadLimit(readLimit)
	return &Source{url: url, conn: conn}, nil
}

// Next blocks for the next well-formed fact. A normal close from the
// producer ends the stream; any other read failure is terminal.
func (s *Source) Next(ctx context.Context) (*ingest.Fact, error) {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil, io.EOF
			}
			return nil, err
		}

		fact, err := ingest.DecodeFact(data)
		if err != nil {
			metric.FactsDropped.WithLabelValues("malformed").Inc()
			logger.Warn("[WS] Dropping malformed fact", "url", s.url, "err", err)
			continue
		}
		return fact, nil
	}
}

func (s *Source) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "session closed")
}
