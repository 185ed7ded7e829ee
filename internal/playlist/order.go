package playlist

// TrackID is a track's stable key: its position in the catalog at load time.
type TrackID int

// None is the TrackID of no track.
const None TrackID = -1

// Order is the fixed playback order of the playlist. It is built once and
// never reordered.
type Order struct {
	ids   []TrackID
	index map[TrackID]int
}

// NewOrder returns an order over ids in the given sequence. Repeated ids
// keep their first position.
func NewOrder(ids []TrackID) *Order {
	o := &Order{index: make(map[TrackID]int, len(ids))}
	for _, id := range ids {
		if _, dup := o.index[id]; dup {
			continue
		}
		o.index[id] = len(o.ids)
		o.ids = append(o.ids, id)
	}
	return o
}

// Len returns the number of tracks.
func (o *Order) Len() int { return len(o.ids) }

// IDs returns the tracks in order.
func (o *Order) IDs() []TrackID {
	return append([]TrackID(nil), o.ids...)
}

// Position returns id's index in the order.
func (o *Order) Position(id TrackID) (int, bool) {
	i, ok := o.index[id]
	return i, ok
}

// At returns the track at position i, or None when out of range.
func (o *Order) At(i int) TrackID {
	if i < 0 || i >= len(o.ids) {
		return None
	}
	return o.ids[i]
}

// Next returns the track after id. It reports false at the end of the list
// or for an unknown id.
func (o *Order) Next(id TrackID) (TrackID, bool) {
	i, ok := o.index[id]
	if !ok || i+1 >= len(o.ids) {
		return None, false
	}
	return o.ids[i+1], true
}

// Prev returns the track before id. It reports false at the start of the
// list or for an unknown id.
func (o *Order) Prev(id TrackID) (TrackID, bool) {
	i, ok := o.index[id]
	if !ok || i == 0 {
		return None, false
	}
	return o.ids[i-1], true
}

// IsLast reports whether id is the final track.
func (o *Order) IsLast(id TrackID) bool {
	i, ok := o.index[id]
	return ok && i == len(o.ids)-1
}
