package logging

// MockLogger captures log entries for assertion in tests.
type MockLogger struct {
	Entries       []LogEntry
	pendingError  error
	pendingFields []Field
}

// LogEntry is a single captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	all := append(append([]Field{}, m.pendingFields...), fields...)
	m.Entries = append(m.Entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// WithError and WithField share the Entries slice with the parent so tests
// see every message regardless of which derived logger emitted it.

func (m *MockLogger) WithError(err error) Logger {
	return &chainedMock{parent: m, err: err, fields: m.pendingFields}
}

func (m *MockLogger) WithField(key string, value any) Logger {
	return &chainedMock{parent: m, err: m.pendingError, fields: append(append([]Field{}, m.pendingFields...), Field{Key: key, Value: value})}
}

// HasMessage reports whether any captured entry carries the given message.
func (m *MockLogger) HasMessage(msg string) bool {
	for _, e := range m.Entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

type chainedMock struct {
	parent *MockLogger
	err    error
	fields []Field
}

func (c *chainedMock) record(level, msg string, fields []Field) {
	all := append(append([]Field{}, c.fields...), fields...)
	c.parent.Entries = append(c.parent.Entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   c.err,
	})
}

func (c *chainedMock) Debug(msg string, fields ...Field) { c.record("DEBUG", msg, fields) }
func (c *chainedMock) Info(msg string, fields ...Field)  { c.record("INFO", msg, fields) }
func (c *chainedMock) Warn(msg string, fields ...Field)  { c.record("WARN", msg, fields) }
func (c *chainedMock) Error(msg string, fields ...Field) { c.record("ERROR", msg, fields) }

func (c *chainedMock) WithError(err error) Logger {
	return &chainedMock{parent: c.parent, err: err, fields: c.fields}
}

func (c *chainedMock) WithField(key string, value any) Logger {
	return &chainedMock{parent: c.parent, err: c.err, fields: append(append([]Field{}, c.fields...), Field{Key: key, Value: value})}
}
