package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_EmptySetWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deletePackage.xml")

	res, err := Write(path, changeset.NewSet(), WriteOptions{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, res.Written)
	assert.NoFileExists(t, path)

	res, err = Write(path, nil, WriteOptions{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestWrite_CreateThenMergeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.xml")
	set := setOf("ApexClass", "Foo", "LightningComponentBundle", "card")

	res, err := Write(path, set, WriteOptions{Version: "62.0"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.True(t, res.Written)
	assert.Equal(t, 2, res.Added)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err = Write(path, set, WriteOptions{Version: "62.0"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 0, res.Added)
	assert.False(t, res.Changed)
	assert.False(t, res.Written)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestWrite_MergeNeverDropsMembers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.xml")
	_, err := Write(path, setOf("ApexClass", "Keep", "Flow", "Also"), WriteOptions{})
	require.NoError(t, err)

	res, err := Write(path, setOf("ApexClass", "New"), WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep", "New"}, m.Members("ApexClass"))
	assert.Equal(t, []string{"Also"}, m.Members("Flow"))
}

func TestWrite_RecoversMalformedManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.xml")
	require.NoError(t, os.WriteFile(path, []byte("<Package><types>"), 0o600))

	res, err := Write(path, setOf("Profile", "Admin"), WriteOptions{})
	require.NoError(t, err)
	assert.True(t, res.Recovered)
	assert.True(t, IsMalformed(res.Malformed))
	assert.True(t, res.Written)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, m.Version())
	assert.Equal(t, []string{"Admin"}, m.Members("Profile"))
}

func TestWrite_ReadFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, setOf("Profile", "Admin"), WriteOptions{})
	require.Error(t, err)
	assert.False(t, IsMalformed(err))
}

func TestWrite_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.xml")

	res, err := Write(path, setOf("ApexClass", "Foo"), WriteOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)
	assert.NoFileExists(t, path)
	assert.Contains(t, res.Diff, "--- /dev/null")
	assert.Contains(t, res.Diff, "+        <members>Foo</members>")

	_, err = Write(path, setOf("ApexClass", "Foo"), WriteOptions{})
	require.NoError(t, err)
	res, err = Write(path, setOf("ApexClass", "Bar"), WriteOptions{DryRun: true})
	require.NoError(t, err)
	assert.Contains(t, res.Diff, "--- a/"+path)
	assert.Contains(t, res.Diff, "+        <members>Bar</members>")
	assert.False(t, strings.Contains(res.Diff, "-        <members>Foo</members>"))
}

func TestLoad_MalformedCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.xml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, path, me.Path)
	assert.Contains(t, err.Error(), path)
}
