// Package schema converts Gradio endpoint descriptors into JSON-schema
// tool definitions.
package schema

// PythonType carries the free-text type expression and description Gradio
// attaches to each parameter.
type PythonType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ParameterInfo is one input slot of a Space endpoint, as served by /info.
type ParameterInfo struct {
	Label               string     `json:"label"`
	ParameterName       string     `json:"parameter_name,omitempty"`
	ParameterHasDefault bool       `json:"parameter_has_default"`
	ParameterDefault    any        `json:"parameter_default"`
	Type                string     `json:"type"`
	PythonType          PythonType `json:"python_type"`
	Component           string     `json:"component"`
	ExampleInput        any        `json:"example_input,omitempty"`
}

// ReturnInfo is one output slot; consumed positionally against the data
// array a call returns.
type ReturnInfo struct {
	Label      string     `json:"label"`
	Type       string     `json:"type"`
	PythonType PythonType `json:"python_type"`
	Component  string     `json:"component"`
}

// EndpointType carries the capability flags Gradio reports per endpoint.
type EndpointType struct {
	Generator bool `json:"generator"`
	Cancel    bool `json:"cancel"`
}

// EndpointSpec is the aggregate discovery result for one callable.
type EndpointSpec struct {
	Parameters []ParameterInfo `json:"parameters"`
	Returns    []ReturnInfo    `json:"returns"`
	Type       EndpointType    `json:"type"`
}
