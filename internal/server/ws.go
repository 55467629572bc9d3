package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/scanner"
)

const (
	// feedWriteWait bounds a single verdict write to a client.
	feedWriteWait = 10 * time.Second

	// feedSendBuffer is how many verdicts a client may fall behind before it
	// is dropped.
	feedSendBuffer = 32
)

// feedClient is one connected dashboard viewer. Verdicts are queued on send
// and written by a dedicated goroutine, so a client that stops reading can
// never stall the scan path.
type feedClient struct {
	conn *websocket.Conn
	send chan scanner.Verdict
}

// verdictFeed broadcasts every produced verdict to connected dashboard
// clients.
type verdictFeed struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
	logger  logging.Logger
}

func newVerdictFeed(logger logging.Logger) *verdictFeed {
	return &verdictFeed{
		clients: make(map[*feedClient]struct{}),
		logger:  logger.With(logging.Field{Key: "component", Value: "scan-feed"}),
	}
}

func (f *verdictFeed) add(conn *websocket.Conn) *feedClient {
	c := &feedClient{conn: conn, send: make(chan scanner.Verdict, feedSendBuffer)}
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()
	go f.writeLoop(c)
	return c
}

// remove unregisters c and closes its queue, ending the write loop. Safe to
// call more than once.
func (f *verdictFeed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drop(c)
}

// drop requires the feed mutex.
func (f *verdictFeed) drop(c *feedClient) {
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

// broadcast queues v for every client and never blocks. A client whose queue
// is full has stopped reading and is dropped.
func (f *verdictFeed) broadcast(v scanner.Verdict) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- v:
		default:
			f.logger.Debug("dropping slow feed client")
			f.drop(c)
		}
	}
}

func (f *verdictFeed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		f.drop(c)
	}
}

// writeLoop drains c.send onto the connection. Each write carries a deadline
// so a wedged peer cannot hold the goroutine past feedWriteWait.
func (f *verdictFeed) writeLoop(c *feedClient) {
	defer c.conn.Close()
	for v := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := c.conn.WriteJSON(v); err != nil {
			f.logger.Debug("feed write failed", logging.Field{Key: "error", Value: err.Error()})
			f.remove(c)
			return
		}
	}
}

var feedUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: tighten for production
		return true
	},
}

// handleScanFeed upgrades the connection and streams verdicts until the
// client disconnects.
func (s *Server) handleScanFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}

	client := s.feed.add(conn)
	defer s.feed.remove(client)

	// Reads are discarded; the loop exists to notice the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
