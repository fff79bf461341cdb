package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcher_ReadsForceignore(t *testing.T) {
	dir := t.TempDir()
	content := "# comments are skipped\n\n**/profiles/**\nforce-app/main/default/classes/Scratch*.cls\r\n!force-app/main/default/profiles/Admin.profile-meta.xml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	m, err := NewMatcher(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	tests := []struct {
		path    string
		ignored bool
	}{
		{"force-app/main/default/profiles/Sales.profile-meta.xml", true},
		{"force-app/main/default/profiles/Admin.profile-meta.xml", false},
		{"force-app/main/default/classes/ScratchPad.cls", true},
		{"force-app/main/default/classes/Service.cls", false},
		{"force-app/main/default/lwc/card/__tests__/card.test.js", false},
		{"force-app/main/default/lwc/jsconfig.json", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignored, m.IsIgnored(tt.path))
			assert.Equal(t, tt.ignored, m.Skip(tt.path))
		})
	}
}

func TestNewMatcher_NoForceignore(t *testing.T) {
	m, err := NewMatcher(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.IsIgnored("force-app/main/default/classes/Foo.cls"))
	assert.False(t, m.IsIgnored("force-app/main/default/lwc/card/__tests__/card.test.js"))
}

func TestNewMatcherFS(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, FileName, []byte("**/*.dup\n"), 0o644))

	m, err := NewMatcherFS(fs)
	require.NoError(t, err)
	assert.True(t, m.IsIgnored("force-app/main/default/classes/Foo.dup"))
	assert.False(t, m.IsIgnored("force-app/main/default/classes/Foo.cls"))
}

func TestSplitPath(t *testing.T) {
	assert.Nil(t, splitPath(""))
	assert.Nil(t, splitPath("."))
	assert.Equal(t, []string{"a", "b", "c"}, splitPath("/a//b/./c"))
	assert.Equal(t, []string{"a", "b"}, splitPath(`a\b`))
}
