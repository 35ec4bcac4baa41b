package lookup

// Iterator is a forward, input-exhausting view over a Cursor's match
// stream: each Advance pulls the next MatchResult and stops once the
// end-of-input sentinel is reached. The zero Iterator is the end
// iterator, matching every other exhausted Iterator.
type Iterator struct {
	cursor *Cursor
	cur    MatchResult
	done   bool
}

// NewIterator returns an Iterator positioned at the first MatchResult
// pulled from c.
func NewIterator(c *Cursor) (*Iterator, error) {
	it := &Iterator{cursor: c}
	if err := it.Advance(); err != nil {
		return nil, err
	}
	return it, nil
}

// Advance pulls the next MatchResult from the underlying cursor. Calling
// Advance once the iterator is Done is a no-op.
func (it *Iterator) Advance() error {
	if it.cursor == nil || it.done {
		it.done = true
		return nil
	}
	m, err := it.cursor.Next()
	if err != nil {
		return err
	}
	it.cur = m
	if m.IsEOI() {
		it.done = true
	}
	return nil
}

// Value returns the MatchResult the iterator currently holds.
func (it *Iterator) Value() MatchResult { return it.cur }

// Done reports whether the iterator has reached end-of-input.
func (it *Iterator) Done() bool { return it == nil || it.done || it.cursor == nil }

// Equal reports whether it and other are positioned at the same point in
// the same underlying cursor's stream, matching at end-of-input
// regardless of which cursor produced it (the canonical end iterator).
func (it *Iterator) Equal(other *Iterator) bool {
	if it.Done() && other.Done() {
		return true
	}
	if it.Done() != other.Done() {
		return false
	}
	return it.cursor == other.cursor && it.cur == other.cur
}
