// Package json centralizes the JSON codec so every component shares one
// configuration. stdout carries protocol frames, so compatibility with the
// standard library's output is required.
package json

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	Marshal         = json.Marshal
	MarshalToString = json.MarshalToString
	Unmarshal       = json.Unmarshal
	NewDecoder      = json.NewDecoder
	NewEncoder      = json.NewEncoder
)

type RawMessage = jsoniter.RawMessage

type Decoder = jsoniter.Decoder

type Encoder = jsoniter.Encoder
