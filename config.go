package propstore

// Config holds global configuration for every container and collection
var Config config = config{
	logger: NewLogger(nil),
}

type config struct {
	logger           *Logger
	compactionEvents CompactionEvents
}

// CompactionEvents are invoked around every garbage collection pass that
// actually removes rows. Either callback may be nil.
type CompactionEvents struct {
	OnBeforeCompact func(kind string, rows, deleted int)
	OnAfterCompact  func(kind string, rows int, generation uint32)
}

// SetLogger replaces the logger used for soft failures and compaction
// reports. A nil logger restores the default.
func (c *config) SetLogger(l *Logger) {
	if l == nil {
		l = NewLogger(nil)
	}
	c.logger = l
}

// Logger returns the configured logger
func (c *config) Logger() *Logger {
	return c.logger
}

// SetCompactionEvents configures the compaction callbacks
func (c *config) SetCompactionEvents(ce CompactionEvents) {
	c.compactionEvents = ce
}
