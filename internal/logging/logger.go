// Package logging provides leveled logging and decision tracing for neuropath.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A DecisionLogger appending typed Decision records to .neuropath/decisions.jsonl,
//     one per path search, reinforcement and decay pass
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-edge logging.
// At this level every relaxation of the path search is logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// DecisionFile is the name of the JSONL decision trace inside the data directory.
const DecisionFile = "decisions.jsonl"

// DecisionKind names the network operation a Decision records.
type DecisionKind string

const (
	DecisionPathSearch DecisionKind = "path_search"
	DecisionReinforce  DecisionKind = "reinforce"
	DecisionDecay      DecisionKind = "decay"
)

// Decision is one line of the decision trace. Exactly one of Search, Change
// and Decay is set, matching Event.
type Decision struct {
	Time  time.Time    `json:"time"`
	Event DecisionKind `json:"event"`

	Search *SearchTrace `json:"search,omitempty"`
	Change *WeightTrace `json:"change,omitempty"`
	Decay  *DecayTrace  `json:"decay,omitempty"`
}

// SearchTrace describes a decision path search. Cost is the path's cost
// before reinforcement.
type SearchTrace struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Found bool     `json:"found"`
	Path  []string `json:"path,omitempty"`
	Cost  float64  `json:"cost"`
}

// WeightTrace describes one synapse reinforcement.
type WeightTrace struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// DecayTrace describes one decay pass over every synapse.
type DecayTrace struct {
	Rate  float64 `json:"rate"`
	Edges int     `json:"edges"`
}

// DecisionLogger appends Decisions to a JSONL file. It is safe for
// concurrent use, and a nil *DecisionLogger discards everything.
type DecisionLogger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
}

// NewDecisionLogger opens dir/decisions.jsonl for append when level is
// "debug" or "trace". At "info" it returns nil and creates nothing. It also
// returns nil when the file cannot be opened: tracing is best effort.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, DecisionFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &DecisionLogger{file: f, enc: json.NewEncoder(f), now: time.Now}
}

// Log appends d as one line, stamping Time when it is zero.
func (dl *DecisionLogger) Log(d Decision) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.file == nil {
		return
	}
	if d.Time.IsZero() {
		d.Time = dl.now().UTC()
	}
	_ = dl.enc.Encode(d)
}

// Close closes the trace file. Later Log calls are no-ops.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.file != nil {
		dl.file.Close()
		dl.file = nil
	}
}
