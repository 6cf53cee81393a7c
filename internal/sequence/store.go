package sequence

import "github.com/demexconsole/console/internal/errs"

// Store owns every recorded sequence, keyed by id, using the same
// map-plus-next-id shape as preset.Store.
type Store struct {
	sequences map[uint32]*Sequence
	nextID    uint32
}

// NewStore builds an empty sequence store.
func NewStore() *Store {
	return &Store{sequences: make(map[uint32]*Sequence), nextID: 1}
}

// AddSequence records seq, failing if its id is already taken.
func (s *Store) AddSequence(seq *Sequence) error {
	if _, ok := s.sequences[seq.id]; ok {
		return errs.Update("sequence %d already exists", seq.id)
	}
	s.sequences[seq.id] = seq
	if seq.id >= s.nextID {
		s.nextID = seq.id + 1
	}
	return nil
}

// Sequence looks up a sequence by id.
func (s *Store) Sequence(id uint32) (*Sequence, error) {
	seq, ok := s.sequences[id]
	if !ok {
		return nil, errs.Lookup("no sequence with id %d", id)
	}
	return seq, nil
}

// Sequences returns every recorded sequence.
func (s *Store) Sequences() map[uint32]*Sequence { return s.sequences }

// DeleteSequence removes a sequence by id.
func (s *Store) DeleteSequence(id uint32) error {
	if _, ok := s.sequences[id]; !ok {
		return errs.Lookup("no sequence with id %d", id)
	}
	delete(s.sequences, id)
	return nil
}

// NextID returns an id not currently in use.
func (s *Store) NextID() uint32 {
	for {
		if _, ok := s.sequences[s.nextID]; !ok {
			return s.nextID
		}
		s.nextID++
	}
}
