package fixture

// Selection is an ordered list of fixture ids plus a (group, block, wings,
// reverse) quartet that derives a per-fixture "offset index" — the position
// a fixture occupies within a chase/effect, independent of patch order.
type Selection struct {
	fixtures []uint32
	group    int
	block    int
	wings    int
	reverse  bool
}

// NewSelection builds a Selection over fixtures with default group/block/wings
// of 1 and reverse=false.
func NewSelection(fixtures []uint32) *Selection {
	cp := make([]uint32, len(fixtures))
	copy(cp, fixtures)
	return &Selection{fixtures: cp, group: 1, block: 1, wings: 1}
}

// HasFixture reports whether id is part of the selection.
func (s *Selection) HasFixture(id uint32) bool {
	for _, f := range s.fixtures {
		if f == id {
			return true
		}
	}
	return false
}

// IntersectsWith reports whether s and other share any fixture.
func (s *Selection) IntersectsWith(other *Selection) bool {
	for _, id := range s.fixtures {
		if other.HasFixture(id) {
			return true
		}
	}
	return false
}

// ExtendFrom appends other's fixtures not already present, leaving
// group/block/wings untouched.
func (s *Selection) ExtendFrom(other *Selection) {
	for _, f := range other.fixtures {
		if !s.HasFixture(f) {
			s.fixtures = append(s.fixtures, f)
		}
	}
}

// UpdateFrom merges other's fixture list and adopts its group/block/wings.
func (s *Selection) UpdateFrom(other *Selection) {
	s.ExtendFrom(other)
	s.group = other.group
	s.block = other.block
	s.wings = other.wings
}

// Subtract removes every fixture that is also in other.
func (s *Selection) Subtract(other *Selection) {
	kept := s.fixtures[:0]
	for _, f := range s.fixtures {
		if !other.HasFixture(f) {
			kept = append(kept, f)
		}
	}
	s.fixtures = kept
}

// AddFixtures appends fixtures not already present and returns s for chaining.
func (s *Selection) AddFixtures(fixtures []uint32) *Selection {
	for _, f := range fixtures {
		if !s.HasFixture(f) {
			s.fixtures = append(s.fixtures, f)
		}
	}
	return s
}

// Fixtures returns the selection's fixture ids in order.
func (s *Selection) Fixtures() []uint32 { return s.fixtures }

func (s *Selection) Group() int {
	if s.group < 1 {
		return 1
	}
	return s.group
}

func (s *Selection) SetGroup(g int) { s.group = g }

func (s *Selection) Block() int {
	if s.block < 1 {
		return 1
	}
	return s.block
}

func (s *Selection) SetBlock(b int) { s.block = b }

func (s *Selection) Wings() int {
	if s.wings < 1 {
		return 1
	}
	return s.wings
}

func (s *Selection) SetWings(w int) { s.wings = w }

func (s *Selection) Reverse() bool { return s.reverse }

func (s *Selection) SetReverse(r bool) { s.reverse = r }

// FixturesWithOffsetIdx returns every selected fixture whose offset index
// equals offsetIdx.
func (s *Selection) FixturesWithOffsetIdx(offsetIdx int) []uint32 {
	var out []uint32
	for _, f := range s.fixtures {
		if idx, ok := s.OffsetIdx(f); ok && idx == offsetIdx {
			out = append(out, f)
		}
	}
	return out
}

// Offset returns the fixture's integer offset index (see OffsetIdx),
// satisfying the valuetree.Selection interface.
func (s *Selection) Offset(fixtureID uint32) (int, bool) {
	return s.OffsetIdx(fixtureID)
}

// OffsetIdx computes the fixture's offset index via the
// blocked -> grouped -> wing-palindrome-fold -> reverse pipeline.
func (s *Selection) OffsetIdx(fixtureID uint32) (int, bool) {
	pos := -1
	for i, f := range s.fixtures {
		if f == fixtureID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0, false
	}

	blockedOffset := pos / s.Block()

	var groupedOffset int
	if s.Group() == 1 {
		groupedOffset = blockedOffset
	} else {
		groupedOffset = blockedOffset % s.Group()
	}

	wingSize := s.numGroupedOffsets() / s.Wings()
	if wingSize < 1 {
		wingSize = 1
	}
	wingOffset := groupedOffset % wingSize

	if (groupedOffset/wingSize)%2 != 0 {
		wingOffset = wingSize - wingOffset - 1
	}

	if s.reverse {
		return s.NumOffsets() - 1 - wingOffset, true
	}
	return wingOffset, true
}

func (s *Selection) numBlockedOffsets() int {
	n := len(s.fixtures)
	b := s.Block()
	return (n + b - 1) / b
}

func (s *Selection) numGroupedOffsets() int {
	if s.Group() == 1 {
		return s.numBlockedOffsets()
	}
	return s.Group()
}

// NumOffsets returns the total number of distinct offset indices this
// selection produces.
func (s *Selection) NumOffsets() int {
	return s.numGroupedOffsets() / s.Wings()
}
