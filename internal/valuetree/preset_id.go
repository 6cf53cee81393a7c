package valuetree

import (
	"fmt"

	"github.com/demexconsole/console/internal/gdtf"
)

// PresetID identifies a preset by feature group and numeric id. Ordered
// lexicographically by (FeatureGroup, ID), rendered "<group>.<id>".
type PresetID struct {
	FeatureGroup gdtf.FeatureGroup
	ID           uint32
}

// String renders the preset id as "<group>.<id>".
func (p PresetID) String() string {
	return fmt.Sprintf("%s.%d", p.FeatureGroup, p.ID)
}

// Less orders preset ids lexicographically by feature group then id.
func (p PresetID) Less(other PresetID) bool {
	if p.FeatureGroup != other.FeatureGroup {
		return p.FeatureGroup < other.FeatureGroup
	}
	return p.ID < other.ID
}
