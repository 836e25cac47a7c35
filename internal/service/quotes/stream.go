package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"QuantSift/pkg/logger"

	"github.com/gorilla/websocket"
)

// Config holds the realtime quote socket settings. An empty URL disables
// the stream entirely; the screen then runs on daily closes alone.
type Config struct {
	URL            string
	APIKey         string
	Symbols        []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
	Staleness      time.Duration
}

func (c Config) normalized() Config {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.Staleness <= 0 {
		c.Staleness = 5 * time.Minute
	}
	return c
}

type lastQuote struct {
	price float64
	at    time.Time
}

// Stream keeps a last-trade price book over the vendor websocket. It only
// answers point reads; nothing downstream consumes the raw trade flow.
type Stream struct {
	cfg Config
	log *logger.Logger

	mu   sync.RWMutex
	book map[string]lastQuote

	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStream(cfg Config, log *logger.Logger) *Stream {
	return &Stream{
		cfg:  cfg.normalized(),
		log:  log,
		book: make(map[string]lastQuote),
	}
}

// Start connects and runs the read loop until the context is cancelled.
// Connection drops are retried forever with a fixed delay.
func (s *Stream) Start(ctx context.Context) error {
	if s.cfg.URL == "" {
		return fmt.Errorf("quotes: no websocket url configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			if err := s.runOnce(ctx); err != nil {
				s.log.Warn("quote stream disconnected", logger.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.ReconnectDelay):
			}
		}
	}()
	return nil
}

func (s *Stream) runOnce(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.cfg.URL, s.cfg.APIKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	for _, sym := range s.cfg.Symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.log.Info("quote stream connected", logger.Int("symbols", len(s.cfg.Symbols)))

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.apply(b)
	}
}

type tradeFrame struct {
	Type string `json:"type"`
	Data []struct {
		Symbol string  `json:"s"`
		Price  float64 `json:"p"`
		TimeMS int64   `json:"t"`
	} `json:"data"`
}

func (s *Stream) apply(raw []byte) {
	var frame tradeFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		// non-trade frames (ping acks etc) are not an error
		return
	}
	if frame.Type != "trade" {
		return
	}
	now := time.Now()
	s.mu.Lock()
	for _, d := range frame.Data {
		if d.Symbol == "" || d.Price <= 0 {
			continue
		}
		s.book[d.Symbol] = lastQuote{price: d.Price, at: now}
	}
	s.mu.Unlock()
}

// LastPrice returns the most recent trade price for ticker, if one has been
// seen and is not stale.
func (s *Stream) LastPrice(ticker string) (float64, bool) {
	s.mu.RLock()
	q, ok := s.book[ticker]
	s.mu.RUnlock()
	if !ok || time.Since(q.at) > s.cfg.Staleness {
		return 0, false
	}
	return q.price, true
}

func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.done != nil {
		<-s.done
	}
	return nil
}
