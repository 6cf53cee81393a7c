package gdtf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTypeFileParsesGenericDimmer(t *testing.T) {
	ft, err := LoadTypeFile("testdata/generic_dimmer.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Generic Dimmer", ft.Name)
	require.Len(t, ft.Modes, 1)

	mode, ok := ft.Mode("Standard")
	require.True(t, ok)
	assert.Equal(t, 1, mode.FootprintSize())

	ch, ok := mode.Channel("Dimmer")
	require.True(t, ok)
	assert.Equal(t, []int{1}, ch.Offsets)
	assert.Equal(t, "Dimmer", ch.LogicalChannel.Attribute)
}

func TestLoadTypeFileParsesRGBParFootprint(t *testing.T) {
	ft, err := LoadTypeFile("testdata/rgb_par.yaml")
	require.NoError(t, err)

	mode, ok := ft.Mode("RGB")
	require.True(t, ok)
	assert.Equal(t, 4, mode.FootprintSize())

	red, ok := mode.Channel("Red")
	require.True(t, ok)
	fn, ok := red.InitialFunction()
	require.True(t, ok)
	assert.Equal(t, "ColorAdd_R", fn.Attribute)
}

func TestLoadTypeRejectsInvalidYAML(t *testing.T) {
	_, err := LoadType([]byte("not: [valid yaml"))
	assert.Error(t, err)
}

func TestLoadTypeFileMissingFileReturnsIOError(t *testing.T) {
	_, err := LoadTypeFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
