package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	lokiPushPath      = "/loki/api/v1/push"
	lokiFlushInterval = time.Second
	lokiBatchSize     = 20
	// Entries beyond this are dropped while Loki is unreachable.
	lokiMaxPending = 50 * lokiBatchSize
	lokiTimeout    = 5 * time.Second
)

type lokiEntry struct {
	level string
	ts    string
	line  string
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// LokiWriter is an io.Writer for JSON log lines. Lines are queued and shipped
// to Loki's push API by a background goroutine, one stream per job and level,
// so Write never waits on the network.
type LokiWriter struct {
	url    string
	job    string
	client *http.Client

	mu      sync.Mutex
	pending []lokiEntry
	dropped int

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewLokiWriter returns a writer pushing to baseURL (e.g. http://loki:3100) under
// the given job label. It returns nil when baseURL or job is empty.
func NewLokiWriter(baseURL, job string) *LokiWriter {
	if baseURL == "" || job == "" {
		return nil
	}
	w := &LokiWriter{
		url:    strings.TrimSuffix(baseURL, "/") + lokiPushPath,
		job:    job,
		client: &http.Client{Timeout: lokiTimeout},
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Write queues each non-empty line of p.
func (w *LokiWriter) Write(p []byte) (int, error) {
	ts := strconv.FormatInt(time.Now().UnixNano(), 10)
	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if len(w.pending) >= lokiMaxPending {
			w.dropped++
			continue
		}
		w.pending = append(w.pending, lokiEntry{level: lineLevel(line), ts: ts, line: string(line)})
	}
	full := len(w.pending) >= lokiBatchSize
	w.mu.Unlock()

	if full {
		select {
		case w.kick <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

// Close stops the background goroutine after it has pushed what is queued.
func (w *LokiWriter) Close() error {
	close(w.stop)
	<-w.done
	return nil
}

func (w *LokiWriter) run() {
	defer close(w.done)
	ticker := time.NewTicker(lokiFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			w.push()
			return
		case <-ticker.C:
			w.push()
		case <-w.kick:
			w.push()
		}
	}
}

func (w *LokiWriter) take() []lokiEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := w.pending
	w.pending = nil
	return batch
}

func (w *LokiWriter) push() {
	batch := w.take()
	if len(batch) == 0 {
		return
	}
	raw, err := json.Marshal(w.payload(batch))
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), lokiTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

// payload groups entries into one stream per level, keeping arrival order.
func (w *LokiWriter) payload(batch []lokiEntry) lokiPush {
	var out lokiPush
	index := map[string]int{}
	for _, e := range batch {
		i, ok := index[e.level]
		if !ok {
			i = len(out.Streams)
			index[e.level] = i
			out.Streams = append(out.Streams, lokiStream{
				Stream: map[string]string{"job": w.job, "level": e.level},
			})
		}
		out.Streams[i].Values = append(out.Streams[i].Values, [2]string{e.ts, e.line})
	}
	return out
}

// lineLevel reads the slog level of a JSON log line, "unknown" otherwise.
func lineLevel(line []byte) string {
	var rec struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(line, &rec); err != nil || rec.Level == "" {
		return "unknown"
	}
	return strings.ToLower(rec.Level)
}
