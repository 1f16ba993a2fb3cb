package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// BufferedLogHandler implements slog.Handler and captures log records in
// memory. It is useful in tests to inspect what debug messages were
// generated without writing to stderr.
//
//	handler := logging.NewBufferedLogHandler(nil)
//	logging.SetLogger(slog.New(handler))
//	// ... exercise the library ...
//	if !handler.Contains("parsed xref table") { ... }
//
// Handlers derived via WithAttrs/WithGroup write through to the same
// buffer, so one handler can observe a whole logger tree.
type BufferedLogHandler struct {
	root     *bufferedState
	preAttrs []slog.Attr
	groups   []string
}

// bufferedState is the shared buffer behind a handler and its children.
type bufferedState struct {
	mu     sync.Mutex
	buffer bytes.Buffer
	level  slog.Leveler
}

// NewBufferedLogHandler creates a handler with an empty buffer. Pass nil
// for opts to capture all levels.
func NewBufferedLogHandler(opts *slog.HandlerOptions) *BufferedLogHandler {
	state := &bufferedState{}
	if opts != nil {
		state.level = opts.Level
	}
	return &BufferedLogHandler{root: state}
}

// Enabled reports whether records at the given level are captured.
func (h *BufferedLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.root.level == nil {
		return true
	}
	return level >= h.root.level.Level()
}

// Handle appends one formatted line per record to the buffer.
func (h *BufferedLogHandler) Handle(_ context.Context, record slog.Record) error {
	h.root.mu.Lock()
	defer h.root.mu.Unlock()

	fmt.Fprintf(&h.root.buffer, "%s %s", record.Level, record.Message)
	prefix := strings.Join(h.groups, ".")
	writeAttr := func(a slog.Attr) {
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		fmt.Fprintf(&h.root.buffer, " %s=%v", key, a.Value)
	}
	for _, a := range h.preAttrs {
		writeAttr(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	h.root.buffer.WriteByte('\n')
	return nil
}

// WithAttrs returns a handler that prepends the given attributes to every
// record, sharing this handler's buffer.
func (h *BufferedLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferedLogHandler{
		root:     h.root,
		preAttrs: append(append([]slog.Attr{}, h.preAttrs...), attrs...),
		groups:   h.groups,
	}
}

// WithGroup returns a handler that qualifies attribute keys with the group
// name, sharing this handler's buffer.
func (h *BufferedLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BufferedLogHandler{
		root:     h.root,
		preAttrs: h.preAttrs,
		groups:   append(append([]string{}, h.groups...), name),
	}
}

// String returns all captured output.
func (h *BufferedLogHandler) String() string {
	h.root.mu.Lock()
	defer h.root.mu.Unlock()
	return h.root.buffer.String()
}

// Contains reports whether the captured output contains the substring.
func (h *BufferedLogHandler) Contains(substr string) bool {
	return strings.Contains(h.String(), substr)
}

// Lines returns the captured output split into lines.
func (h *BufferedLogHandler) Lines() []string {
	out := strings.TrimSuffix(h.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Reset discards all captured output.
func (h *BufferedLogHandler) Reset() {
	h.root.mu.Lock()
	defer h.root.mu.Unlock()
	h.root.buffer.Reset()
}
