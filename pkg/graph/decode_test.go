package graph

import (
	"strings"
	"testing"
)

const sampleDoc = `{
  "nodes": [
    {"id": "start", "type": "Start", "position": {"x": 0, "y": 0}},
    {"id": "move", "type": "LinearMove", "position": {"x": 200, "y": 0},
     "parameters": {"x": 10, "y": 10, "z": 0.2}},
    {"id": "end", "type": "End", "position": {"x": 400, "y": 0}}
  ],
  "edges": [
    {"id": "e1", "source": "start", "source_port": "out", "target": "move", "target_port": "in"},
    {"id": "e2", "source": "move", "source_port": "out", "target": "end", "target_port": "in"}
  ]
}`

func TestDecode_Document(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", g.NodeCount())
	}
	if len(g.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(g.Edges))
	}

	move := g.Node("move")
	if move == nil {
		t.Fatal("node move not found")
	}
	if move.Type != "LinearMove" {
		t.Errorf("move.Type = %q", move.Type)
	}
	if x, ok := move.Params["x"].(float64); !ok || x != 10 {
		t.Errorf("move x parameter = %v", move.Params["x"])
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader("{nodes")); err == nil {
		t.Error("expected decode error for malformed JSON")
	}
}

func TestDecode_KeepsDuplicateIDs(t *testing.T) {
	// Duplicates must survive decoding so the validator can report them.
	doc := `{"nodes": [
	  {"id": "a", "type": "Comment"},
	  {"id": "a", "type": "Comment"}
	], "edges": []}`
	g, err := DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Errorf("nodes = %d, want both duplicate entries", len(g.Nodes))
	}
}

func TestGraph_LookupHelpers(t *testing.T) {
	g, err := DecodeBytes([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if got := g.Successors("start"); len(got) != 1 || got[0] != "move" {
		t.Errorf("Successors(start) = %v", got)
	}
	if got := g.Incoming("end"); len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("Incoming(end) = %v", got)
	}
	if got := g.Outgoing("move"); len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("Outgoing(move) = %v", got)
	}
	if g.Node("ghost") != nil {
		t.Error("lookup of unknown node should be nil")
	}
	if g.Edge("e1") == nil {
		t.Error("edge e1 not found")
	}
}
