package endpoint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	ref, err := ParsePath("evalstate/FLUX.1-schnell/infer")
	require.NoError(t, err)
	assert.Equal(t, "evalstate", ref.Owner)
	assert.Equal(t, "FLUX.1-schnell", ref.Space)
	assert.Equal(t, "/infer", ref.Name)
	assert.True(t, ref.Named())

	ref, err = ParsePath("/owner/space/3")
	require.NoError(t, err)
	assert.False(t, ref.Named())
	assert.Equal(t, 3, ref.Index)

	// a segment that only partially parses as a number is a name
	ref, err = ParsePath("owner/space/3d_render")
	require.NoError(t, err)
	assert.Equal(t, "/3d_render", ref.Name)
}

func TestParsePathSegmentCount(t *testing.T) {
	for _, path := range []string{"", "owner", "owner/space", "a/b/c/d"} {
		_, err := ParsePath(path)
		var pathErr *PathFormatError
		assert.ErrorAs(t, err, &pathErr, "path %q", path)
	}
}

func TestParsePathRoundTrip(t *testing.T) {
	for _, path := range []string{"o/s/predict", "o/s/5", "/o/s/my_endpoint"} {
		ref, err := ParsePath(path)
		require.NoError(t, err)
		segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
		rebuilt := ref.Owner + "/" + ref.Space + "/" + strings.TrimPrefix(ref.designator(), "/")
		assert.Equal(t, strings.Join(segs, "/"), rebuilt)
	}
}

func TestHasExplicitEndpoint(t *testing.T) {
	assert.True(t, HasExplicitEndpoint("owner/space/predict"))
	assert.True(t, HasExplicitEndpoint("/owner/space/2"))
	assert.False(t, HasExplicitEndpoint("owner/space"))
	assert.False(t, HasExplicitEndpoint("owner/space/a/b"))
}

func TestToolName(t *testing.T) {
	ref := Ref{Owner: "evalstate", Space: "FLUX.1-schnell", Name: "/infer"}
	assert.Equal(t, "FLUX_1-schnell-_infer", ref.ToolName())

	long := Ref{Owner: "o", Space: strings.Repeat("x", 80), Name: "/predict"}
	assert.Len(t, long.ToolName(), 64)

	positional := Ref{Owner: "o", Space: "space", Index: 2}
	assert.Equal(t, "space-_2", positional.ToolName())
}

func TestDisplayName(t *testing.T) {
	ref := Ref{Owner: "o", Space: "FLUX.1-schnell", Name: "/infer"}
	assert.Equal(t, "FLUX.1-schnell endpoint /infer", ref.DisplayName())

	positional := Ref{Owner: "o", Space: "space", Index: 1}
	assert.Equal(t, "space endpoint /1", positional.DisplayName())
}
