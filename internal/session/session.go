// ABOUTME: Session context: id, working directory, and transcript location
// ABOUTME: Supplies the envelope fields hook processes receive

package session

import (
	"fmt"

	"github.com/google/uuid"
)

// Context identifies one agent session and owns its transcript writer.
type Context struct {
	ID     string
	CWD    string
	Writer *Writer
}

// New creates a session with a fresh UUID and an open transcript.
func New(cwd string) (*Context, error) {
	id := uuid.NewString()

	writer, err := NewWriter(id)
	if err != nil {
		return nil, fmt.Errorf("creating session writer: %w", err)
	}

	c := &Context{ID: id, CWD: cwd, Writer: writer}

	if err := writer.WriteRecord(RecordSessionStart, SessionStartData{ID: id, CWD: cwd}); err != nil {
		return nil, fmt.Errorf("writing session start: %w", err)
	}

	return c, nil
}

// TranscriptPath returns the on-disk transcript location.
func (c *Context) TranscriptPath() string {
	return c.Writer.Path()
}

// Close ends the session, writing the final record.
func (c *Context) Close() error {
	if err := c.Writer.WriteRecord(RecordSessionEnd, nil); err != nil {
		return err
	}
	return c.Writer.Close()
}
