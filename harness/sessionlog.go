package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SessionResult is the record of one benchmark in a session log.
type SessionResult struct {
	Name      string            `json:"name"`
	Status    string            `json:"status"` // "pass", "fail", "n/a" or "error"
	Results   map[string]string `json:"results"`
	Units     map[string]string `json:"units,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Session is the content of a session log file.
type Session struct {
	ID         string          `json:"session_id"`
	Started    time.Time       `json:"started"`
	Device     string          `json:"device,omitempty"`
	Benchmarks []SessionResult `json:"benchmarks"`
}

// SessionLogConsumer keeps the results of a session in a JSON file, rewritten
// after every benchmark so a crash loses at most the current one.
type SessionLogConsumer struct {
	mu      sync.Mutex
	path    string
	session Session
	current *SessionResult
}

// NewSessionLogConsumer creates the session file at path. When path is a
// directory, the file is named after the session name and start time.
func NewSessionLogConsumer(path, sessionName string) (*SessionLogConsumer, error) {
	now := time.Now()
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, fmt.Sprintf("%s_%s.json", sessionName, now.Format("20060102_150405")))
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	c := &SessionLogConsumer{
		path: path,
		session: Session{
			ID:         uuid.NewString(),
			Started:    now,
			Benchmarks: []SessionResult{},
		},
	}
	if err := c.write(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the session file.
func (c *SessionLogConsumer) Path() string { return c.path }

// SessionID returns the unique id of the session.
func (c *SessionLogConsumer) SessionID() string { return c.session.ID }

func (c *SessionLogConsumer) ProceedToBenchmark(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &SessionResult{
		Name:    name,
		Status:  "n/a",
		Results: make(map[string]string),
		Units:   make(map[string]string),
	}
}

func (c *SessionLogConsumer) ConsumeResult(name, value, comment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.current.Results[name] = value
	if comment != "" {
		c.current.Units[name] = comment
	}
	switch name {
	case "device-name":
		c.session.Device = value
	case "Verification":
		switch value {
		case "PASS":
			c.current.Status = "pass"
		case "FAIL":
			c.current.Status = "fail"
		}
	}
}

// Discard keeps a record of the benchmark with status "error" and no results.
func (c *SessionLogConsumer) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.session.Benchmarks = append(c.session.Benchmarks, SessionResult{
		Name:      c.current.Name,
		Status:    "error",
		Results:   map[string]string{},
		Error:     "results discarded",
		Timestamp: time.Now(),
	})
	c.current = nil
	_ = c.write()
}

// Flush appends the current benchmark to the session and rewrites the file.
func (c *SessionLogConsumer) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Timestamp = time.Now()
		c.session.Benchmarks = append(c.session.Benchmarks, *c.current)
		c.current = nil
	}
	return c.write()
}

// Session returns a copy of the session recorded so far.
func (c *SessionLogConsumer) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.Benchmarks = append([]SessionResult(nil), c.session.Benchmarks...)
	return s
}

func (c *SessionLogConsumer) write() error {
	data, err := json.MarshalIndent(c.session, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	return errors.Wrapf(os.WriteFile(c.path, data, 0644), "writing session log %s", c.path)
}

// ReadSession loads a session log file.
func ReadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading session log %s", path)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parsing session log %s", path)
	}
	return &s, nil
}
