package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stavelayout/pkg/config"
)

// Context carries the state shared by all passes over one document: the
// options, the logger, the group id counter and the registry that keeps
// extender lines at the same distance across systems.
//
// A Context is not safe for concurrent use. Lay out systems of one document
// sequentially and give every document its own Context.
type Context struct {
	Options *config.Options
	Logger  *log.Logger

	nextGroupID int
	extenders   map[string]float64
	skipped     []Skipped
}

// Skipped records an event that could not be laid out.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// NewContext returns a context for one document. A nil logger discards.
func NewContext(opts *config.Options, logger *log.Logger) *Context {
	if opts == nil {
		o := config.Default()
		opts = &o
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Context{
		Options:   opts,
		Logger:    logger,
		extenders: make(map[string]float64),
	}
}

// NewGroupID returns a fresh, positive group id.
func (c *Context) NewGroupID() int {
	c.nextGroupID++
	return c.nextGroupID
}

// Skip logs and records an event that is left out of the layout. Repeated
// passes over the same system report an event once.
func (c *Context) Skip(id, reason string) {
	for _, s := range c.skipped {
		if s.ID == id {
			return
		}
	}
	c.Logger.Warn("skipping element", "id", id, "reason", reason)
	c.skipped = append(c.skipped, Skipped{ID: id, Reason: reason})
}

// SkippedEvents returns the events skipped so far.
func (c *Context) SkippedEvents() []Skipped {
	return c.skipped
}

// extenderYRel merges yRel with the furthest offset seen for the extender
// id. Above-staff extenders keep the highest value, the others the lowest.
func (c *Context) extenderYRel(id string, yRel float64, above bool) float64 {
	prev, ok := c.extenders[id]
	if ok {
		if above && prev > yRel || !above && prev < yRel {
			yRel = prev
		}
	}
	c.extenders[id] = yRel
	return yRel
}
