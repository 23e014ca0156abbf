package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsubasakong/mcp-hfspace/src/json"
)

func TestParseNumericConstraints(t *testing.T) {
	tests := []struct {
		name string
		desc string
		min  *float64
		max  *float64
	}{
		{"between", "numeric value between 256 and 2048", f(256), f(2048)},
		{"min and max", "float (numeric value min: 0, max: 1.0)", f(0), f(1)},
		{"max only", "maximum=100", nil, f(100)},
		{"min only", "minimum: 2", f(2), nil},
		{"negative between", "between -1.5 and 1.5", f(-1.5), f(1.5)},
		{"no constraints", "any number you like", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ParseNumericConstraints(tt.desc)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestParseLiteralEnum(t *testing.T) {
	enum := ParseLiteralEnum(`Literal['1:1', '16:9', '9:16', '4:3']`)
	assert.Equal(t, []string{"1:1", "16:9", "9:16", "4:3"}, enum)

	assert.Nil(t, ParseLiteralEnum("str"))
	assert.Nil(t, ParseLiteralEnum("List[str]"))
	assert.Equal(t, []string{"a", "b"}, ParseLiteralEnum(`Literal["a", "b"]`))
}

func TestConvertParameterLiteral(t *testing.T) {
	p := &ParameterInfo{
		Label:      "Aspect Ratio",
		Type:       "string",
		PythonType: PythonType{Type: `Literal['1:1', '16:9']`},
	}
	prop := ConvertParameter(p)
	assert.Equal(t, []string{"1:1", "16:9"}, prop.Enum)
	// description falls back to the label when the literal carries none
	assert.Equal(t, "Aspect Ratio", prop.Description)
}

func TestConvertParameterNumber(t *testing.T) {
	p := &ParameterInfo{
		Label:               "Steps",
		ParameterName:       "num_steps",
		Type:                "number",
		PythonType:          PythonType{Type: "float", Description: "between 1 and 50"},
		ParameterHasDefault: true,
		ParameterDefault:    25.0,
	}
	prop := ConvertParameter(p)
	assert.Equal(t, "number", prop.Type)
	require.NotNil(t, prop.Minimum)
	require.NotNil(t, prop.Maximum)
	assert.Equal(t, 1.0, *prop.Minimum)
	assert.Equal(t, 50.0, *prop.Maximum)
	assert.Equal(t, 25.0, prop.Default)
}

func TestConvertParameterFileLike(t *testing.T) {
	tests := []struct {
		name string
		p    ParameterInfo
		desc string
	}{
		{
			"filepath python type",
			ParameterInfo{Label: "File", Type: "string", PythonType: PythonType{Type: "filepath"}},
			"Accepts: URL, file path, or resource identifier",
		},
		{
			"blob coarse type",
			ParameterInfo{Label: "Upload", Type: "Blob | File | Buffer"},
			"Accepts: URL, file path, or resource identifier",
		},
		{
			"image component",
			ParameterInfo{Label: "Input Image", Type: "number", Component: "Image"},
			"Accepts: Image file URL, file path, or resource identifier",
		},
		{
			"audio component",
			ParameterInfo{Label: "Input Audio", Type: "string", Component: "Audio"},
			"Accepts: Audio file URL, file path, or resource identifier",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsFileParameter(&tt.p))
			prop := ConvertParameter(&tt.p)
			// file-like parameters are always strings, whatever was declared
			assert.Equal(t, "string", prop.Type)
			assert.Equal(t, tt.desc, prop.Description)
		})
	}
}

func TestConvertParameterFileExample(t *testing.T) {
	p := &ParameterInfo{
		Label:     "Input Image",
		Component: "Image",
		ExampleInput: map[string]any{
			"url":  "https://example.com/cat.png",
			"path": "/tmp/cat.png",
		},
	}
	prop := ConvertParameter(p)
	require.Len(t, prop.Examples, 1)
	assert.Equal(t, "https://example.com/cat.png", prop.Examples[0])
}

func TestConvertEndpointToSchema(t *testing.T) {
	spec := &EndpointSpec{
		Parameters: []ParameterInfo{
			{Label: "Prompt", ParameterName: "prompt", Type: "string"},
			{Label: "Steps", ParameterName: "steps", Type: "number",
				ParameterHasDefault: true, ParameterDefault: 20.0},
			{Type: "string"}, // nameless
		},
	}
	s := ConvertEndpointToSchema(spec)
	assert.Equal(t, []string{"prompt", "steps", "Unnamed Parameter 1"}, s.Order)
	assert.Equal(t, []string{"prompt", "Unnamed Parameter 1"}, s.Required)
	assert.Len(t, s.Properties, 3)
}

func TestConvertEndpointToSchemaCollision(t *testing.T) {
	spec := &EndpointSpec{
		Parameters: []ParameterInfo{
			{Label: "Value", Type: "string"},
			{Label: "Value", Type: "number", ParameterHasDefault: true},
		},
	}
	s := ConvertEndpointToSchema(spec)
	assert.Equal(t, []string{"Value", "Value_1"}, s.Order)
	assert.Equal(t, "number", s.Properties["Value_1"].Type)
}

func TestObjectSchemaMarshalOrder(t *testing.T) {
	spec := &EndpointSpec{
		Parameters: []ParameterInfo{
			{ParameterName: "zebra", Type: "string"},
			{ParameterName: "apple", Type: "string"},
			{ParameterName: "mango", Type: "string"},
		},
	}
	out, err := json.Marshal(ConvertEndpointToSchema(spec))
	require.NoError(t, err)
	// property order must survive serialization
	z := strings.Index(string(out), `"zebra"`)
	a := strings.Index(string(out), `"apple"`)
	m := strings.Index(string(out), `"mango"`)
	assert.Less(t, z, a)
	assert.Less(t, a, m)
}

func f(v float64) *float64 { return &v }
