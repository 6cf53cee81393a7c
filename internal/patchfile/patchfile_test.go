package patchfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demexconsole/console/internal/fixture"
)

func TestLoadParsesFixtureList(t *testing.T) {
	doc, err := Load("testdata/patch.yaml")
	require.NoError(t, err)
	assert.Len(t, doc.Fixtures, 3)
	assert.Equal(t, "Wash 1", doc.Fixtures[0].Name)
}

func TestApplyPatchesFixturesInOrder(t *testing.T) {
	doc, err := Load("testdata/patch.yaml")
	require.NoError(t, err)

	fixtures := fixture.NewStore()
	require.NoError(t, doc.Apply("testdata/patch.yaml", fixtures))

	patched := fixtures.Fixtures()
	require.Len(t, patched, 3)
	assert.Equal(t, uint32(1), patched[0].ID())
	assert.Equal(t, "Wash 1", patched[0].Name())
}

func TestTypeLookupResolvesByFixtureTypeName(t *testing.T) {
	doc, err := Load("testdata/patch.yaml")
	require.NoError(t, err)

	lookup, err := doc.TypeLookup("testdata/patch.yaml")
	require.NoError(t, err)

	ft, ok := lookup("RGB Par")
	require.True(t, ok)
	assert.Equal(t, "RGB Par", ft.Name)

	_, ok = lookup("Unknown Fixture")
	assert.False(t, ok)
}

func TestApplyMissingTypeFileReturnsError(t *testing.T) {
	doc := &Document{Fixtures: []Entry{{Name: "X", TypeFile: "does-not-exist.yaml", Mode: "M", Universe: 1, StartAddress: 1}}}
	fixtures := fixture.NewStore()
	err := doc.Apply("testdata/patch.yaml", fixtures)
	assert.Error(t, err)
}
