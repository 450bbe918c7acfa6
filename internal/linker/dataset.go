package linker

import "micelio/internal/content"

// ForDataset builds a linker over the dataset's own collections.
func ForDataset(ds *content.Dataset, opts ...Option) *Linker {
	return New(ds.Locations, ds.Characters, ds.Songs, ds.Plots, opts...)
}

// LinkDataset returns a copy of ds with every linkable text field rewritten.
// ds itself is left as loaded.
func LinkDataset(ds *content.Dataset, l *Linker) *content.Dataset {
	linked := ds.Clone()
	linked.VisitText(func(f content.Field, value string) string {
		if !f.Linkable {
			return value
		}
		return l.Link(value)
	})
	return linked
}
