package hotreload

import (
	"bufio"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
)

const heartbeatInterval = 30 * time.Second

// LiveReloadHub manages SSE clients and broadcasts the ID of each new snapshot.
type LiveReloadHub struct {
	mu       sync.RWMutex
	nextID   int
	clients  map[int]*lrClient
	recorder metrics.Recorder
	closed   bool
	lastHash string
}

type lrClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewLiveReloadHub returns a hub. A nil recorder disables metrics.
func NewLiveReloadHub(r metrics.Recorder) *LiveReloadHub {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	return &LiveReloadHub{clients: map[int]*lrClient{}, recorder: r}
}

// ServeHTTP implements the SSE endpoint at /livereload.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.lastHash
	h.mu.Unlock()
	defer h.removeClient(client.id)

	// the first event only sets the client's baseline
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(": connected\n\n"); err != nil {
		return
	}
	if current != "" {
		if _, err := bw.WriteString(hashEvent(current)); err != nil {
			return
		}
	}
	if err := bw.Flush(); err == nil {
		flusher.Flush()
	}

	hb := time.NewTicker(heartbeatInterval)
	defer hb.Stop()
	ctx := r.Context()
	for {
		var msg string
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			msg = ": ping\n\n"
		case hash := <-client.ch:
			msg = hashEvent(hash)
		}
		if _, err := bw.WriteString(msg); err != nil {
			slog.Debug("livereload write", logfields.Error(err))
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
		flusher.Flush()
	}
}

func hashEvent(hash string) string {
	return "data: {\"hash\":\"" + hash + "\"}\n\n"
}

func (h *LiveReloadHub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Clients returns the number of connected clients.
func (h *LiveReloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends hash to all clients. Clients whose buffers are full are dropped;
// repeating the last hash is a no-op.
func (h *LiveReloadHub) Broadcast(hash string) {
	h.mu.Lock()
	if h.closed || hash == "" || hash == h.lastHash {
		h.mu.Unlock()
		return
	}
	h.lastHash = hash
	clients := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range clients {
		select {
		case c.ch <- hash:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncLiveReloadBroadcast(len(clients) - dropped)
	slog.Debug("livereload broadcast", slog.String("hash", hash), logfields.Count(len(clients)), slog.Int("dropped", dropped))
}

// Shutdown closes all clients and prevents future broadcasts.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*lrClient{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
}

// LiveReloadScript is served at /livereload.js and injected into HTML pages.
const LiveReloadScript = `(() => {
  if (window.__DOCSERVE_LR__) return;
  window.__DOCSERVE_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let first = true; let current = null;
    es.onmessage = (e) => { try { const p = JSON.parse(e.data); if (first) { current = p.hash; first = false; return; } if (p.hash && p.hash !== current) { console.log('[docserve] change detected, reloading'); location.reload(); } } catch (_) {} };
    es.onerror = () => { console.warn('[docserve] livereload error - retrying'); es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();`
