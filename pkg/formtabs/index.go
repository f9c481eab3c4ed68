package formtabs

import "github.com/vango-dev/formtabs/pkg/ordered"

// Index is direct, tab-level access to a registry's fields.
//
// It reads and replaces whole tabs and skips the rules AddField and
// RemoveField keep: no default tab, no pruning of empty tabs. Maps
// returned by Get are the registry's own.
type Index[F any] interface {
	// Get returns the fields of tab.
	Get(tab string) (*ordered.Map[string, F], bool)

	// Set replaces the fields of tab. A nil map stores an empty tab.
	Set(tab string, fields *ordered.Map[string, F])

	// Exists reports whether tab is present.
	Exists(tab string) bool

	// Delete removes tab and its fields.
	Delete(tab string)
}

// Labels returns tab-level access to t.
func (t *Tabs[F]) Labels() Index[F] {
	return labelIndex[F]{t: t}
}

type labelIndex[F any] struct {
	t *Tabs[F]
}

func (l labelIndex[F]) Get(tab string) (*ordered.Map[string, F], bool) {
	return l.t.fields.Get(tab)
}

func (l labelIndex[F]) Set(tab string, fields *ordered.Map[string, F]) {
	if fields == nil {
		fields = ordered.New[string, F](0)
	}
	l.t.fields.Set(tab, fields)
}

func (l labelIndex[F]) Exists(tab string) bool {
	return l.t.fields.Has(tab)
}

func (l labelIndex[F]) Delete(tab string) {
	l.t.fields.Delete(tab)
}
