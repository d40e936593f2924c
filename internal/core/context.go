package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/pipeworks/pipespawn/internal/journal"
	"github.com/pipeworks/pipespawn/internal/poller"
	"github.com/pipeworks/pipespawn/internal/scratch"
)

// Config parameterizes a Context. The zero value is not usable directly;
// New fills in defaults for zero fields.
type Config struct {
	// Slots is the number of thread-slots, each with its own poll table
	// and servicing goroutine. Minimum 1.
	Slots int

	// DescriptorLimit caps the descriptors registered per slot. The
	// factory keeps one position in reserve, so the effective ceiling is
	// DescriptorLimit-1.
	DescriptorLimit int

	// EventBuffer is the per-slot capacity of the readiness event batch
	// handed to the poll backend.
	EventBuffer int

	// ScratchBase, when set, overrides where the lock-guarded working
	// directory for spawned children is created.
	ScratchBase string

	// JournalPath, when set, enables the SQLite spawn journal at that
	// path.
	JournalPath string

	// Registerer, when set, enables Prometheus instrumentation.
	Registerer prometheus.Registerer

	// PreRegister, when set, runs before each descriptor enters a slot's
	// poll table; an error aborts the registration.
	PreRegister func(*Descriptor) error

	// ExecFailStatus is the exit status for children whose exec never
	// happens. Zero selects the forkexec default.
	ExecFailStatus int

	// ParentDeathSignal, when nonzero, is delivered to children if this
	// process dies.
	ParentDeathSignal int
}

// Context is the reactor: a fixed set of slots plus the shared protocol
// table, scratch directory, journal and instrumentation.
//
// Context-level lookups are safe from any goroutine once construction and
// protocol registration are done; everything routed through a Slot belongs
// to that slot's goroutine.
type Context struct {
	cfg Config
	id  string

	slots []*Slot

	protocols []*Protocol
	byName    map[string]*Protocol

	liveDescriptors atomic.Int64

	metrics *metrics
	journal *journal.Journal
	scratch *scratch.Dir

	closed bool
}

const (
	defaultDescriptorLimit = 256
	defaultEventBuffer     = 64
)

// New builds a reactor context: a scratch directory, the optional journal,
// and one poll backend per slot. On any failure everything acquired so far
// is released before the error is returned.
func New(ctx context.Context, cfg Config) (*Context, error) {
	if cfg.Slots < 1 {
		cfg.Slots = 1
	}
	if cfg.DescriptorLimit <= 0 {
		cfg.DescriptorLimit = defaultDescriptorLimit
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	if cfg.ParentDeathSignal == 0 {
		cfg.ParentDeathSignal = defaultParentDeathSignal
	}

	c := &Context{
		cfg:    cfg,
		id:     uuid.NewString(),
		byName: make(map[string]*Protocol),
	}

	u := newUnwinder()
	defer u.run()

	base := cfg.ScratchBase
	if base == "" {
		base = filepath.Join(os.TempDir(), "pipespawn-"+c.id[:8])
	}
	dir, err := scratch.Acquire(ctx, base, Logger())
	if err != nil {
		return nil, fmt.Errorf("acquire scratch dir: %w", err)
	}
	c.scratch = dir
	u.push(dir.Release)

	if cfg.JournalPath != "" {
		j, err := journal.Open(ctx, cfg.JournalPath, Logger())
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		c.journal = j
		u.push(func() { _ = j.Close() })
	}

	c.metrics = newMetrics(cfg.Registerer)

	for i := 0; i < cfg.Slots; i++ {
		p, err := poller.Open()
		if err != nil {
			return nil, fmt.Errorf("open poll backend for slot %d: %w", i, err)
		}
		u.push(func() { _ = p.Close() })
		s := &Slot{
			ctx:         c,
			index:       i,
			poller:      p,
			byFD:        make(map[int]*Descriptor),
			limit:       cfg.DescriptorLimit,
			events:      make([]poller.Event, cfg.EventBuffer),
			preRegister: cfg.PreRegister,
		}
		c.slots = append(c.slots, s)
	}

	u.disarm()
	Logger().Info("reactor up",
		"id", c.id, "slots", cfg.Slots,
		"descriptor_limit", cfg.DescriptorLimit, "scratch", dir.Path())
	return c, nil
}

// Slot returns the i'th thread-slot.
func (c *Context) Slot(i int) (*Slot, error) {
	if i < 0 || i >= len(c.slots) {
		return nil, fmt.Errorf("slot %d of %d: %w", i, len(c.slots), ErrSlotOutOfRange)
	}
	return c.slots[i], nil
}

// Slots returns the number of thread-slots.
func (c *Context) Slots() int { return len(c.slots) }

// LiveDescriptors returns the number of descriptors currently registered
// across all slots. Safe from any goroutine.
func (c *Context) LiveDescriptors() int64 { return c.liveDescriptors.Load() }

// ScratchPath returns the working directory children are started in.
func (c *Context) ScratchPath() string { return c.scratchPath() }

func (c *Context) scratchPath() string {
	if c.scratch == nil {
		return ""
	}
	return c.scratch.Path()
}

// Journal returns the most recent journal entries, newest first. It returns
// nil entries when no journal is configured.
func (c *Context) Journal(ctx context.Context, limit int) ([]journal.Entry, error) {
	if c.journal == nil {
		return nil, nil
	}
	return c.journal.Recent(ctx, limit)
}

// noteExit records a collected child exit in the journal and metrics.
func (c *Context) noteExit(h *Handle, status int, outcome string) {
	c.metrics.reaped()
	c.journal.RecordExit(h.id, h.pid, status, outcome)
	Logger().Info("child exited",
		"handle", h.id, "pid", h.pid, "status", status, "outcome", outcome)
}

// Close tears the reactor down: every slot's surviving handles are
// terminated, reaped and destroyed on a goroutine dedicated to that slot,
// then the poll backends, journal and scratch directory are released.
// Close must not race with Service calls; stop the servicing goroutines
// first.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var g errgroup.Group
	for _, s := range c.slots {
		g.Go(func() error {
			for _, h := range s.handles.snapshot() {
				c.TerminateAndReap(h)
				c.Destroy(h)
			}
			return s.poller.Close()
		})
	}
	err := g.Wait()

	if c.journal != nil {
		if jerr := c.journal.Close(); jerr != nil && err == nil {
			err = jerr
		}
	}
	c.scratch.Release()

	Logger().Info("reactor down", "id", c.id)
	return err
}
