// Package modal holds the visibility state of an overlay dialog. A dialog is
// open exactly when an entity is selected; closing only drops the reference.
package modal

// Modal is a nullable, view-only pointer to one element of a page's
// collection. The zero value is closed.
type Modal[T any] struct {
	selected *T
}

// Open selects v and shows the dialog. v is copied, so later reloads of the
// owning collection do not change what the dialog shows.
func (m *Modal[T]) Open(v T) {
	m.selected = &v
}

// Close hides the dialog and clears the selection.
func (m *Modal[T]) Close() {
	m.selected = nil
}

// IsOpen reports whether an entity is selected.
func (m Modal[T]) IsOpen() bool {
	return m.selected != nil
}

// Selected returns the selected entity, if any.
func (m Modal[T]) Selected() (T, bool) {
	if m.selected == nil {
		var zero T
		return zero, false
	}
	return *m.selected, true
}
