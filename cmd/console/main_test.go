package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdHasServeAndPatchSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["patch"])
}

func TestPatchValidateReportsPatchedFixtures(t *testing.T) {
	cmd := newPatchValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"../../internal/patchfile/testdata/patch.yaml"})

	err := cmd.RunE(cmd, []string{"../../internal/patchfile/testdata/patch.yaml"})
	require.NoError(t, err)
}

func TestPatchValidateMissingFileFails(t *testing.T) {
	cmd := newPatchValidateCmd()
	err := cmd.RunE(cmd, []string{"does-not-exist.yaml"})
	assert.Error(t, err)
}
