/*
Package profanity provides the content predicate used to reject offensive chat messages.

The relay treats the filter as opaque: it asks a single yes/no question per message and
shares no other state with it.
*/
package profanity

import (
	goaway "github.com/TwiN/go-away"
)

// Filter reports whether a piece of text should be rejected.
type Filter interface {
	IsProfane(text string) bool
}

// FilterFunc adapts an ordinary function to the Filter interface.
type FilterFunc func(text string) bool

// IsProfane calls f(text).
func (f FilterFunc) IsProfane(text string) bool {
	return f(text)
}

// Allow is a Filter that never rejects anything.
var Allow Filter = FilterFunc(func(string) bool { return false })

// NewFilter returns the default word-list filter backed by go-away.
func NewFilter() Filter {
	return goaway.NewProfanityDetector()
}
