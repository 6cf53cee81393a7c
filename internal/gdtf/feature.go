package gdtf

// FeatureGroup is the coarse functional grouping a GDTF attribute belongs
// to, used to restrict which channels a recorded preset may claim and to
// drive intensity-specific fade behaviour (the sequence runtime's
// Dimmer-feature check).
type FeatureGroup string

const (
	FeatureGroupIntensity FeatureGroup = "Intensity"
	FeatureGroupPosition  FeatureGroup = "Position"
	FeatureGroupColor     FeatureGroup = "Color"
	FeatureGroupBeam      FeatureGroup = "Beam"
	FeatureGroupFocus     FeatureGroup = "Focus"
	FeatureGroupControl   FeatureGroup = "Control"
)

// FeatureType names a specific feature within a feature group, the unit the
// effect runtime resolves a parametric value for (e.g. "Dimmer" within
// Intensity, "Pan"/"Tilt" within Position).
type FeatureType string

const (
	FeatureDimmer    FeatureType = "Dimmer"
	FeaturePan       FeatureType = "Pan"
	FeatureTilt      FeatureType = "Tilt"
	FeatureColorRGB  FeatureType = "ColorRGB"
	FeatureColorWheel FeatureType = "ColorWheel"
	FeatureGobo      FeatureType = "Gobo"
	FeatureZoom      FeatureType = "Zoom"
	FeatureFocus     FeatureType = "Focus"
	FeatureShutter   FeatureType = "Shutter"
	FeatureControl   FeatureType = "Control"
)

// attributeFeature maps a GDTF attribute name to the feature it belongs to.
// The attribute set below is the standard GDTF attribute vocabulary, not an
// exhaustive one — it covers the attributes the bundled fixture types use.
var attributeFeature = map[string]FeatureType{
	"Dimmer":      FeatureDimmer,
	"Pan":         FeaturePan,
	"Tilt":        FeatureTilt,
	"ColorAdd_R":  FeatureColorRGB,
	"ColorAdd_G":  FeatureColorRGB,
	"ColorAdd_B":  FeatureColorRGB,
	"ColorRGB":    FeatureColorRGB,
	"ColorWheel":  FeatureColorWheel,
	"Gobo1":       FeatureGobo,
	"Gobo2":       FeatureGobo,
	"Zoom":        FeatureZoom,
	"Focus1":      FeatureFocus,
	"Shutter1":    FeatureShutter,
	"Control":     FeatureControl,
}

// featureGroupOf maps a feature to its feature group.
var featureGroupOf = map[FeatureType]FeatureGroup{
	FeatureDimmer:     FeatureGroupIntensity,
	FeaturePan:        FeatureGroupPosition,
	FeatureTilt:       FeatureGroupPosition,
	FeatureColorRGB:   FeatureGroupColor,
	FeatureColorWheel: FeatureGroupColor,
	FeatureGobo:       FeatureGroupBeam,
	FeatureZoom:       FeatureGroupBeam,
	FeatureFocus:      FeatureGroupFocus,
	FeatureShutter:    FeatureGroupBeam,
	FeatureControl:    FeatureGroupControl,
}

// AttributeFeature resolves a GDTF attribute name to its feature type.
func AttributeFeature(attribute string) (FeatureType, bool) {
	f, ok := attributeFeature[attribute]
	return f, ok
}

// AttributeFeatureGroup resolves a GDTF attribute name directly to its
// feature group, used by the preset store's record_preset restriction.
func AttributeFeatureGroup(attribute string) (FeatureGroup, bool) {
	feature, ok := attributeFeature[attribute]
	if !ok {
		return "", false
	}
	group, ok := featureGroupOf[feature]
	return group, ok
}

// FeatureGroupOf resolves a feature type to its feature group.
func FeatureGroupOf(feature FeatureType) (FeatureGroup, bool) {
	g, ok := featureGroupOf[feature]
	return g, ok
}
