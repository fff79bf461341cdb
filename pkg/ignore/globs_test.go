package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobs(t *testing.T) {
	g, err := NewGlobs(
		[]string{"force-app/**"},
		[]string{"**/staticresources/**", "**/*Test.cls"},
	)
	require.NoError(t, err)
	assert.False(t, g.Empty())

	tests := []struct {
		path string
		skip bool
	}{
		{"force-app/main/default/classes/Foo.cls", false},
		{"force-app/main/default/classes/FooTest.cls", true},
		{"force-app/main/default/staticresources/lib.resource", true},
		{"unpackaged/classes/Foo.cls", true},
		{"/force-app/main/default/flows/A.flow-meta.xml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.skip, g.Skip(tt.path))
		})
	}
}

func TestGlobs_NoPatternsKeepsEverything(t *testing.T) {
	g, err := NewGlobs(nil, nil)
	require.NoError(t, err)
	assert.True(t, g.Empty())
	assert.False(t, g.Skip("anything/at/all"))
}

func TestNewGlobs_InvalidPattern(t *testing.T) {
	_, err := NewGlobs([]string{"force-app/[unclosed"}, nil)
	assert.Error(t, err)
}
