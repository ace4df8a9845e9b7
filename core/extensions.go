// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// Extensions is the ordered list of instance extension names enabled at
// instance creation. Order is preserved and duplicates are kept.
type Extensions struct {
	names []string
}

// Append copies names to the end of the list.
func (e *Extensions) Append(names ...string) {
	if len(names) == 0 {
		return
	}
	e.names = append(e.names, names...)
}

// Names returns a copy of the registered names.
func (e *Extensions) Names() []string {
	if len(e.names) == 0 {
		return nil
	}
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of registered names.
func (e *Extensions) Len() int {
	return len(e.names)
}

// Reset empties the list.
func (e *Extensions) Reset() {
	e.names = nil
}
