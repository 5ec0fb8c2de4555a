// ABOUTME: JSONL transcript persistence with append-only writes
// ABOUTME: Reads line-by-line with bufio.Scanner; crash-safe via O_APPEND

package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mauromedda/pi-hooks-go/internal/config"
)

// RecordType identifies the type of JSONL record.
type RecordType string

const (
	RecordSessionStart RecordType = "session_start"
	RecordToolCall     RecordType = "tool_call"
	RecordToolResult   RecordType = "tool_result"
	RecordModelCall    RecordType = "model_call"
	RecordHookBlock    RecordType = "hook_block"
	RecordSessionEnd   RecordType = "session_end"
)

// Record is the envelope for all JSONL entries.
type Record struct {
	Version int             `json:"v"`
	Type    RecordType      `json:"type"`
	TS      string          `json:"ts"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SessionStartData holds session_start metadata.
type SessionStartData struct {
	ID  string `json:"id"`
	CWD string `json:"cwd"`
}

// ToolCallData records a tool invocation, before and after hooks ran.
type ToolCallData struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input,omitempty"`
}

// HookBlockData records a hook vetoing a pipeline step.
type HookBlockData struct {
	Event  string `json:"event"`
	Tool   string `json:"tool,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const recordVersion = 1

// Writer appends records to a session transcript file.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewWriter opens (or creates) the transcript for the given session id in
// the default sessions directory.
func NewWriter(sessionID string) (*Writer, error) {
	dir, err := config.SessionsDir()
	if err != nil {
		return nil, fmt.Errorf("resolving sessions dir: %w", err)
	}
	return NewWriterIn(dir, sessionID)
}

// NewWriterIn opens (or creates) the transcript in a specific directory.
func NewWriterIn(dir, sessionID string) (*Writer, error) {
	path := filepath.Join(dir, sessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}

	return &Writer{path: path, f: f}, nil
}

// Path returns the transcript file location.
func (w *Writer) Path() string {
	return w.path
}

// WriteRecord appends one record. Each record is a single JSON line.
func (w *Writer) WriteRecord(typ RecordType, data any) error {
	rec := Record{
		Version: recordVersion,
		Type:    typ,
		TS:      time.Now().UTC().Format(time.RFC3339),
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshaling %s data: %w", typ, err)
		}
		rec.Data = raw
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// ReadRecords loads all records from a transcript file.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	return records, nil
}
