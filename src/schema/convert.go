package schema

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsubasakong/mcp-hfspace/src/json"
)

// Sentinel type tags Gradio uses for binary-content parameters.
const (
	filepathType = "filepath"
	blobType     = "Blob | File | Buffer"
)

// Property is the derived JSON-schema entry for a single parameter.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Examples    []any    `json:"examples,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ObjectSchema aggregates an endpoint's parameters into one object schema.
// Order tracks property insertion order; consumers pairing values
// positionally rely on it, so MarshalJSON emits properties in that order.
type ObjectSchema struct {
	Type       string
	Properties map[string]*Property
	Required   []string
	Order      []string
}

// MarshalJSON writes properties in declaration order rather than Go's
// randomized map order.
func (s *ObjectSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	typ, err := json.Marshal(s.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(typ)
	buf.WriteString(`,"properties":{`)
	for i, name := range s.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.Properties[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	if len(s.Required) > 0 {
		buf.WriteString(`,"required":`)
		req, err := json.Marshal(s.Required)
		if err != nil {
			return nil, err
		}
		buf.Write(req)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IsFileParameter reports whether a parameter expects binary content
// addressed by path, URL, or identifier. The invocation path uses the same
// predicate to decide upload substitution.
func IsFileParameter(p *ParameterInfo) bool {
	if p.PythonType.Type == filepathType {
		return true
	}
	if p.Type == blobType {
		return true
	}
	switch p.Component {
	case "Image", "Audio":
		return true
	}
	return false
}

// ConvertParameter maps one parameter descriptor onto a schema property.
//
// Decision order: file-like detection, base schema, numeric constraint
// mining (numbers only), Literal enum mining. The mining branches layer on
// top of the base schema and are mutually exclusive.
func ConvertParameter(p *ParameterInfo) *Property {
	if IsFileParameter(p) {
		prop := &Property{
			Type:        "string",
			Description: fileDescription(p.Component),
		}
		if ex := fileExample(p.ExampleInput); ex != nil {
			prop.Examples = []any{ex}
		}
		return prop
	}

	prop := &Property{
		Type:        p.Type,
		Description: describe(p),
	}
	if prop.Type == "" {
		prop.Type = "string"
	}
	if p.ParameterHasDefault {
		prop.Default = p.ParameterDefault
	}
	if p.ExampleInput != nil {
		prop.Examples = []any{p.ExampleInput}
	}

	if prop.Type == "number" && p.PythonType.Description != "" {
		prop.Minimum, prop.Maximum = ParseNumericConstraints(p.PythonType.Description)
		return prop
	}
	if enum := ParseLiteralEnum(p.PythonType.Type); enum != nil {
		prop.Enum = enum
		prop.Description = describe(p)
	}
	return prop
}

// describe picks the property description: the detailed free-text
// description, falling back to the display label.
func describe(p *ParameterInfo) string {
	if p.PythonType.Description != "" {
		return p.PythonType.Description
	}
	return p.Label
}

func fileDescription(component string) string {
	switch component {
	case "Audio":
		return "Accepts: Audio file URL, file path, or resource identifier"
	case "Image":
		return "Accepts: Image file URL, file path, or resource identifier"
	default:
		return "Accepts: URL, file path, or resource identifier"
	}
}

// fileExample extracts the URL or path carried by a file-shaped example
// value, preferring the URL.
func fileExample(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if u, ok := m["url"].(string); ok && u != "" {
		return u
	}
	if p, ok := m["path"].(string); ok && p != "" {
		return p
	}
	return nil
}

var (
	betweenRe = regexp.MustCompile(`(?i)between\s+(-?\d+(?:\.\d+)?)\s+and\s+(-?\d+(?:\.\d+)?)`)
	minRe     = regexp.MustCompile(`(?i)\bmin(?:imum)?\s*[:=]\s*(-?\d+(?:\.\d+)?)`)
	maxRe     = regexp.MustCompile(`(?i)\bmax(?:imum)?\s*[:=]\s*(-?\d+(?:\.\d+)?)`)
)

// ParseNumericConstraints mines a free-text description for numeric range
// hints. A "between X and Y" phrase wins outright; otherwise independent
// min/max assignments are matched, each optional.
func ParseNumericConstraints(desc string) (min, max *float64) {
	if m := betweenRe.FindStringSubmatch(desc); m != nil {
		return parseNum(m[1]), parseNum(m[2])
	}
	if m := minRe.FindStringSubmatch(desc); m != nil {
		min = parseNum(m[1])
	}
	if m := maxRe.FindStringSubmatch(desc); m != nil {
		max = parseNum(m[1])
	}
	return min, max
}

func parseNum(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseLiteralEnum extracts the members of a Literal[...] type expression,
// stripping surrounding quotes from each element. Returns nil when the
// expression is not a literal type.
func ParseLiteralEnum(expr string) []string {
	if !strings.HasPrefix(expr, "Literal[") {
		return nil
	}
	inner := strings.TrimPrefix(expr, "Literal[")
	inner = strings.TrimSuffix(inner, "]")
	parts := strings.Split(inner, ",")
	enum := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `'"`)
		enum = append(enum, part)
	}
	return enum
}

// ConvertEndpointToSchema aggregates an endpoint's parameters into an object
// schema. Property names come from the wire-level parameter name, falling
// back to the display label, falling back to a synthesized placeholder.
// Parameters without a declared default are required. A derived-name
// collision is disambiguated by appending the parameter's position.
func ConvertEndpointToSchema(spec *EndpointSpec) *ObjectSchema {
	s := &ObjectSchema{
		Type:       "object",
		Properties: make(map[string]*Property, len(spec.Parameters)),
	}
	unnamed := 0
	for i := range spec.Parameters {
		p := &spec.Parameters[i]
		name := p.ParameterName
		if name == "" {
			name = p.Label
		}
		if name == "" {
			unnamed++
			name = fmt.Sprintf("Unnamed Parameter %d", unnamed)
		}
		if _, taken := s.Properties[name]; taken {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		s.Properties[name] = ConvertParameter(p)
		s.Order = append(s.Order, name)
		if !p.ParameterHasDefault {
			s.Required = append(s.Required, name)
		}
	}
	return s
}
