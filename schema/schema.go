package schema

import "encoding/json"

// Schema is message content schema interface
type Schema interface {
	// String returns the text presentation of the schema which is sent to llm
	String() string
}

// Stringify returns the text presentation of a Schema, nil safe
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	if v, ok := s.(String); ok {
		return string(v)
	}
	return s.String()
}

// Marshal json encode a structured schema
func Marshal(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}
