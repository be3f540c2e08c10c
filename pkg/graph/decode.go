package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses a graph document from JSON. The input contract is
// {"nodes": [...], "edges": [...]} regardless of how the document was
// produced (editor, file, generated).
//
// Decoding is deliberately forgiving: structural problems such as unknown
// types, dangling edges, or duplicate IDs are the validator's job, so
// only malformed JSON is a decode error.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	dec := json.NewDecoder(r)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("graph: decode document: %w", err)
	}
	return &g, nil
}

// DecodeBytes parses a graph document from a byte slice.
func DecodeBytes(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("graph: decode document: %w", err)
	}
	return &g, nil
}
