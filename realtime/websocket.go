package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHandler serves GET /realtime?thread_id=... by relaying the hub events of
// the thread to the connection. Clients may only publish typing signals.
func NewHandler(hub *Hub, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = mylog.Discard()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		threadID := r.URL.Query().Get("thread_id")
		if threadID == "" {
			http.Error(w, "thread_id is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade websocket", mylog.Err(err))
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub, err := hub.Subscribe(ctx, threadID)
		if err != nil {
			logger.Warn("failed to subscribe", "thread_id", threadID, mylog.Err(err))
			_ = conn.Close()
			return
		}

		logger.Info("realtime client connected", "thread_id", threadID, "remote", r.RemoteAddr)
		go writePump(conn, sub, logger)
		readPump(ctx, conn, hub, threadID, logger)
		sub.Close()
		logger.Info("realtime client disconnected", "thread_id", threadID, "remote", r.RemoteAddr)
	})
}

func readPump(ctx context.Context, conn *websocket.Conn, hub *Hub, threadID string, logger *slog.Logger) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected websocket close", mylog.Err(err))
			}
			return
		}
		if ev.Type != EventTyping {
			logger.Debug("ignore client event", "type", ev.Type)
			continue
		}
		ev.ThreadID = threadID
		if ev.At.IsZero() {
			ev.At = time.Now()
		}
		if err := hub.Publish(ctx, ev); err != nil {
			logger.Warn("failed to publish typing", mylog.Err(err))
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("failed to write event", mylog.Err(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Client subscribes to a remote hub over websocket.
type Client struct {
	URL    string
	Dialer *websocket.Dialer
	Logger *slog.Logger
}

var _ Subscriber = (*Client)(nil)

func NewClient(realtimeUrl string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = mylog.Discard()
	}
	return &Client{
		URL:    realtimeUrl,
		Dialer: websocket.DefaultDialer,
		Logger: logger,
	}
}

func (c *Client) Subscribe(ctx context.Context, threadID string) (*Subscription, error) {
	if threadID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "thread id is required")
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse realtime url")
	}
	q := u.Query()
	q.Set("thread_id", threadID)
	u.RawQuery = q.Encode()

	conn, _, err := c.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", u.Redacted())
	}

	var (
		writeMu sync.Mutex
		done    = make(chan struct{})
	)
	sub := newSubscription(threadID)
	sub.send = func(_ context.Context, ev Event) error {
		writeMu.Lock()
		defer writeMu.Unlock()

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return errors.Wrapf(conn.WriteJSON(ev), "failed to send event")
	}
	sub.closer = func() {
		close(done)
		writeMu.Lock()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		writeMu.Unlock()
		_ = conn.Close()
	}

	go func() {
		defer close(sub.events)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-done:
				default:
					c.Logger.Warn("realtime connection lost", "thread_id", threadID, mylog.Err(err))
				}
				return
			}
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				c.Logger.Warn("failed to decode realtime event", mylog.Err(err))
				continue
			}
			select {
			case sub.events <- ev:
			case <-done:
				return
			}
		}
	}()

	sub.bind(ctx)
	return sub, nil
}
