package timing

import (
	"time"

	"github.com/demexconsole/console/internal/errs"
)

// defaultSpeedMasterCount is how many speed masters a new Store pre-seeds
// (ids 0..9, each a default speed master).
const defaultSpeedMasterCount = 10

// Store owns the named speed masters sequences and effects reference for
// their BPM-locked clock.
type Store struct {
	speedMasters map[uint32]*SpeedMaster
}

// NewStore builds a store pre-seeded with defaultSpeedMasterCount speed
// masters at DefaultBPM.
func NewStore() *Store {
	s := &Store{speedMasters: make(map[uint32]*SpeedMaster, defaultSpeedMasterCount)}
	for id := uint32(0); id < defaultSpeedMasterCount; id++ {
		s.speedMasters[id] = DefaultSpeedMaster()
	}
	return s
}

// SpeedMasters returns every speed master by id.
func (s *Store) SpeedMasters() map[uint32]*SpeedMaster {
	return s.speedMasters
}

// SpeedMaster looks up a speed master by id.
func (s *Store) SpeedMaster(id uint32) (*SpeedMaster, error) {
	sm, ok := s.speedMasters[id]
	if !ok {
		return nil, errs.Lookup("speed master %d not found", id)
	}
	return sm, nil
}

// Tap registers a tap against the named speed master.
func (s *Store) Tap(id uint32, instant time.Time) error {
	sm, err := s.SpeedMaster(id)
	if err != nil {
		return err
	}
	sm.Tap(instant)
	return nil
}
