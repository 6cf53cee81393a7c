package gdtf

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/demexconsole/console/internal/errs"
)

// yamlValue is Value's YAML shape: a float in [0,1] plus the byte width it
// should be packed at, which is easier to hand-author than a raw integer.
type yamlValue struct {
	Float float32 `yaml:"float"`
	Bytes int     `yaml:"bytes"`
}

func (v yamlValue) toValue() Value {
	bytes := v.Bytes
	if bytes <= 0 {
		bytes = 1
	}
	return FromF32(v.Float, bytes)
}

type yamlChannelSet struct {
	Name    string    `yaml:"name"`
	DMXFrom yamlValue `yaml:"dmxFrom"`
}

type yamlChannelFunction struct {
	Name        string           `yaml:"name"`
	Attribute   string           `yaml:"attribute"`
	DMXFrom     yamlValue        `yaml:"dmxFrom"`
	Default     yamlValue        `yaml:"default"`
	ChannelSets []yamlChannelSet `yaml:"channelSets"`
}

type yamlLogicalChannel struct {
	Attribute        string                `yaml:"attribute"`
	Snap             bool                  `yaml:"snap"`
	Master           string                `yaml:"master"` // "none" or "grand"
	ChannelFunctions []yamlChannelFunction `yaml:"channelFunctions"`
}

type yamlChannel struct {
	Name           string             `yaml:"name"`
	Offsets        []int              `yaml:"offsets"`
	LogicalChannel yamlLogicalChannel `yaml:"logicalChannel"`
}

type yamlRelation struct {
	MasterChannel       string `yaml:"masterChannel"`
	MasterFunctionIdx   int    `yaml:"masterFunctionIndex"`
	FollowerChannel     string `yaml:"followerChannel"`
	FollowerFunctionIdx int    `yaml:"followerFunctionIndex"`
}

type yamlMode struct {
	Name      string         `yaml:"name"`
	Channels  []yamlChannel  `yaml:"channels"`
	Relations []yamlRelation `yaml:"relations"`
}

type yamlType struct {
	Name  string     `yaml:"name"`
	Modes []yamlMode `yaml:"modes"`
}

// LoadType parses a single fixture type description from YAML, in lieu of a
// full GDTF XML parser. This is the shape internal/gdtf/testdata fixtures
// and any on-disk patch library use.
func LoadType(data []byte) (*Type, error) {
	var yt yamlType
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return nil, errs.IO(err, "parse fixture type YAML")
	}
	return yt.toType(), nil
}

// LoadTypeFile reads and parses a fixture type description from path.
func LoadTypeFile(path string) (*Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(err, "read fixture type file %s", path)
	}
	return LoadType(data)
}

func (yt yamlType) toType() *Type {
	t := &Type{Name: yt.Name}
	for _, ym := range yt.Modes {
		mode := Mode{Name: ym.Name}
		for _, yc := range ym.Channels {
			master := MasterNone
			if yc.LogicalChannel.Master == "grand" {
				master = MasterGrand
			}
			lc := LogicalChannel{
				Attribute: yc.LogicalChannel.Attribute,
				Snap:      yc.LogicalChannel.Snap,
				Master:    master,
			}
			for _, ycf := range yc.LogicalChannel.ChannelFunctions {
				cf := ChannelFunction{
					Name:      ycf.Name,
					Attribute: ycf.Attribute,
					DMXFrom:   ycf.DMXFrom.toValue(),
					Default:   ycf.Default.toValue(),
				}
				for _, ycs := range ycf.ChannelSets {
					cf.ChannelSets = append(cf.ChannelSets, ChannelSet{
						Name:    ycs.Name,
						DMXFrom: ycs.DMXFrom.toValue(),
					})
				}
				lc.ChannelFunctions = append(lc.ChannelFunctions, cf)
			}
			mode.Channels = append(mode.Channels, Channel{
				ChannelName:    yc.Name,
				Offsets:        yc.Offsets,
				LogicalChannel: lc,
			})
		}
		for _, yr := range ym.Relations {
			mode.Relations = append(mode.Relations, Relation{
				Type:                RelationMultiply,
				MasterChannel:       yr.MasterChannel,
				MasterFunctionIdx:   yr.MasterFunctionIdx,
				FollowerChannel:     yr.FollowerChannel,
				FollowerFunctionIdx: yr.FollowerFunctionIdx,
			})
		}
		t.Modes = append(t.Modes, mode)
	}
	return t
}
