// Package catalog shares form layouts between goroutines.
//
// A formtabs registry is not safe for concurrent use. The catalog owns
// one Layout per form, loaded on demand from a formdef.Source, and holds
// a read-write lock around every access. Readers receive snapshots or
// run under the read lock; mutations take the write lock and notify
// subscribers with a fresh snapshot.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formdef"
	"github.com/vango-dev/formtabs/pkg/formtabs"
)

// Options configures a Catalog.
type Options struct {
	// Logger receives load and change events. Default: slog.Default().
	Logger *slog.Logger

	// SubscriberBuffer is the channel capacity of each subscription.
	// Default: 4.
	SubscriberBuffer int
}

// Catalog holds the layouts of the forms in a source.
type Catalog struct {
	mu sync.RWMutex

	src     formdef.Source
	layouts map[string]*formdef.Layout
	subs    map[string]map[uuid.UUID]*subscriber

	logger  *slog.Logger
	bufSize int
	closed  bool
}

type subscriber struct {
	ch   chan formdef.Snapshot
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// New returns a catalog reading from src.
func New(src formdef.Source, opts Options) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bufSize := opts.SubscriberBuffer
	if bufSize <= 0 {
		bufSize = 4
	}
	return &Catalog{
		src:     src,
		layouts: make(map[string]*formdef.Layout),
		subs:    make(map[string]map[uuid.UUID]*subscriber),
		logger:  logger.With("component", "catalog"),
		bufSize: bufSize,
	}
}

// Names returns the forms the source holds.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	return c.src.List(ctx)
}

// Get returns a snapshot of the form called name, loading it on first use.
func (c *Catalog) Get(ctx context.Context, name string) (formdef.Snapshot, error) {
	var snap formdef.Snapshot
	err := c.View(ctx, name, func(l *formdef.Layout) error {
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// View runs fn with the layout of name under the read lock. fn must not
// modify the layout or keep it after returning.
func (c *Catalog) View(ctx context.Context, name string, fn func(*formdef.Layout) error) error {
	if err := c.ensure(ctx, name); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.layouts[name]
	if !ok {
		return c.notFound(ctx, name, nil)
	}
	return fn(l)
}

// Section returns a snapshot of one section of the form called name.
func (c *Catalog) Section(ctx context.Context, name string, section formtabs.Section) (formtabs.Snapshot[*formdef.Field], error) {
	var snap formtabs.Snapshot[*formdef.Field]
	err := c.View(ctx, name, func(l *formdef.Layout) error {
		tabs, ok := l.Section(section)
		if !ok {
			return errors.New("E021").
				WithDetail("Section " + string(section) + " does not exist.").
				WithSuggestion("Use one of outside, primary or secondary.")
		}
		snap = tabs.Snapshot()
		return nil
	})
	return snap, err
}

// Reload reads name from the source again and replaces the cached
// layout. Subscribers receive the new snapshot.
func (c *Catalog) Reload(ctx context.Context, name string) (formdef.Snapshot, error) {
	layout, err := c.load(ctx, name)
	if err != nil {
		return formdef.Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.layouts[name] = layout
	snap := layout.Snapshot()
	c.publish(name, snap)
	c.logger.Info("form reloaded", "form", name, "fields", len(layout.FieldNames()))
	return snap, nil
}

// RemoveField removes field from the form called name. A field the form
// does not hold is an error with code E022.
func (c *Catalog) RemoveField(ctx context.Context, name, field string) (formdef.Snapshot, error) {
	if err := c.ensure(ctx, name); err != nil {
		return formdef.Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.layouts[name]
	if !ok {
		return formdef.Snapshot{}, c.notFound(ctx, name, nil)
	}
	if !l.RemoveField(field) {
		e := errors.New("E022").WithDetail("Form " + name + " has no field " + field + ".")
		if s := suggest(field, l.FieldNames()); s != "" {
			e.WithSuggestion("Did you mean " + s + "?")
		}
		return formdef.Snapshot{}, e
	}
	snap := l.Snapshot()
	c.publish(name, snap)
	c.logger.Info("field removed", "form", name, "field", field)
	return snap, nil
}

// Subscribe returns a channel that receives the current snapshot of name
// and a new one after every change. A slow reader only sees the latest
// snapshot. cancel stops the subscription and closes the channel.
func (c *Catalog) Subscribe(ctx context.Context, name string) (updates <-chan formdef.Snapshot, cancel func(), err error) {
	if err := c.ensure(ctx, name); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, errors.New("E120").WithDetail("The catalog is closed.")
	}
	l, ok := c.layouts[name]
	if !ok {
		return nil, nil, c.notFound(ctx, name, nil)
	}

	id := uuid.New()
	sub := &subscriber{ch: make(chan formdef.Snapshot, c.bufSize)}
	sub.ch <- l.Snapshot()
	if c.subs[name] == nil {
		c.subs[name] = make(map[uuid.UUID]*subscriber)
	}
	c.subs[name][id] = sub
	c.logger.Debug("subscribed", "form", name, "subscriber", id)

	cancel = func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if forms, ok := c.subs[name]; ok {
			delete(forms, id)
			if len(forms) == 0 {
				delete(c.subs, name)
			}
		}
		sub.close()
	}
	return sub.ch, cancel, nil
}

// Subscribers returns the number of open subscriptions to name.
func (c *Catalog) Subscribers(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs[name])
}

// Close ends every subscription. The catalog still serves reads.
func (c *Catalog) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for name, forms := range c.subs {
		for _, sub := range forms {
			sub.close()
		}
		delete(c.subs, name)
	}
}

// publish sends snap to the subscribers of name. Caller holds c.mu.
func (c *Catalog) publish(name string, snap formdef.Snapshot) {
	for id, sub := range c.subs[name] {
		select {
		case sub.ch <- snap:
			continue
		default:
		}
		// Full: drop the oldest queued snapshot.
		select {
		case <-sub.ch:
			c.logger.Debug("subscriber lagging", "form", name, "subscriber", id)
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

// ensure loads name if it is not cached yet.
func (c *Catalog) ensure(ctx context.Context, name string) error {
	c.mu.RLock()
	_, ok := c.layouts[name]
	c.mu.RUnlock()
	if ok {
		return nil
	}

	layout, err := c.load(ctx, name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.layouts[name]; !ok {
		c.layouts[name] = layout
		c.logger.Info("form loaded", "form", name, "fields", len(layout.FieldNames()))
	}
	return nil
}

func (c *Catalog) load(ctx context.Context, name string) (*formdef.Layout, error) {
	layout, err := formdef.Load(ctx, c.src, name)
	if err != nil {
		if errors.CodeOf(err) == "E001" {
			return nil, c.notFound(ctx, name, err)
		}
		c.logger.Error("form load failed", "form", name, "error", err)
		return nil, err
	}
	return layout, nil
}

// notFound builds an E020 error with a suggestion from the source's
// form names.
func (c *Catalog) notFound(ctx context.Context, name string, cause error) error {
	e := errors.New("E020").WithDetail("No form named " + name + ".")
	if cause != nil {
		e.Wrap(cause)
	}
	if names, err := c.src.List(ctx); err == nil {
		if s := suggest(name, names); s != "" {
			e.WithSuggestion("Did you mean " + s + "?")
		}
	}
	return e
}

// suggest returns the candidate closest to name, or "" when none is
// within a third of name's length (at least two edits).
func suggest(name string, candidates []string) string {
	limit := max(2, len(name)/3)
	best, bestDist := "", limit+1
	for _, cand := range slices.Compact(slices.Sorted(slices.Values(candidates))) {
		if d := levenshtein.ComputeDistance(name, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
