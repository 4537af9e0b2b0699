package models

import (
	"encoding/json"
	"testing"
)

func samplePath() Path {
	return Path{
		{FromID: 10, ToID: 15, FromName: "A", ToName: "B", Track: "Song1"},
		{FromID: 15, ToID: 20, FromName: "B", ToName: "C", Track: "Song2"},
	}
}

func TestPath(t *testing.T) {
	t.Run("Signature", func(t *testing.T) {
		if got := samplePath().Signature(); got != "10->15|15->20" {
			t.Errorf("expected 10->15|15->20, got %s", got)
		}
		if got := (Path{}).Signature(); got != "" {
			t.Errorf("expected empty signature, got %q", got)
		}
	})

	t.Run("Signature is direction sensitive", func(t *testing.T) {
		reversed := Path{{FromID: 15, ToID: 10}, {FromID: 20, ToID: 15}}
		if reversed.Signature() == samplePath().Signature() {
			t.Error("reversed hops should not share a signature")
		}
	})

	t.Run("Endpoints", func(t *testing.T) {
		src, dst, ok := samplePath().Endpoints()
		if !ok || src != 10 || dst != 20 {
			t.Errorf("expected (10, 20, true), got (%d, %d, %v)", src, dst, ok)
		}

		if _, _, ok := (Path{}).Endpoints(); ok {
			t.Error("empty path should have no endpoints")
		}
	})

	t.Run("Clone", func(t *testing.T) {
		p := samplePath()
		c := p.Clone()
		c[0].Track = "changed"
		if p[0].Track != "Song1" {
			t.Error("clone should not share backing array")
		}
	})

	t.Run("HasTrack", func(t *testing.T) {
		if (ConnectionStep{Track: "  "}).HasTrack() {
			t.Error("blank track should not count")
		}
		if !(ConnectionStep{Track: "x"}).HasTrack() {
			t.Error("expected track")
		}
	})
}

func TestEdge(t *testing.T) {
	t.Run("NewEdge normalizes order", func(t *testing.T) {
		if NewEdge(20, 15) != NewEdge(15, 20) {
			t.Error("{a,b} and {b,a} should be equal")
		}
		if e := NewEdge(20, 15); e.A != 15 || e.B != 20 {
			t.Errorf("expected A<=B, got %v", e)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal([]Edge{NewEdge(15, 10)})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != "[[10,15]]" {
			t.Errorf("expected [[10,15]], got %s", data)
		}

		var edges []Edge
		if err := json.Unmarshal([]byte("[[20,15]]"), &edges); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(edges) != 1 || edges[0] != NewEdge(15, 20) {
			t.Errorf("unexpected edges: %v", edges)
		}

		if err := json.Unmarshal([]byte("[[1,2,3]]"), &edges); err == nil {
			t.Error("expected error for three ids")
		}
	})

	t.Run("PathRequest omits empty exclusions", func(t *testing.T) {
		data, _ := json.Marshal(PathRequest{SourceID: 1, TargetID: 2})
		if string(data) != `{"source_id":1,"target_id":2}` {
			t.Errorf("unexpected body: %s", data)
		}
	})
}

func TestPathResult(t *testing.T) {
	if r := Found(nil, 0.5); r.Outcome != OutcomeNotFound {
		t.Errorf("empty found path should be not found, got %v", r.Outcome)
	}
	if r := Found(samplePath(), 0.5); r.Outcome != OutcomeFound || len(r.Path) != 2 {
		t.Errorf("unexpected result: %+v", r)
	}
	if r := Failed("boom"); r.Outcome != OutcomeFailed || r.Message != "boom" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestRouteRecord(t *testing.T) {
	r := NewRouteRecord(1, "session", samplePath(), 0.25)

	if err := r.Validate(); err != nil {
		t.Fatalf("expected valid record: %v", err)
	}
	if r.Source().Name != "A" || r.Target().ID != 20 {
		t.Errorf("unexpected endpoints: %+v -> %+v", r.Source(), r.Target())
	}

	data, err := r.StepsJSON()
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	decoded, err := DecodeSteps(data)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if decoded.Signature() != r.Signature() {
		t.Errorf("signature mismatch after decode: %s vs %s", decoded.Signature(), r.Signature())
	}

	if err := NewRouteRecord(1, "", samplePath(), 0).Validate(); err == nil {
		t.Error("expected validation error without session")
	}
	if err := NewRouteRecord(1, "s", nil, 0).Validate(); err == nil {
		t.Error("expected validation error without steps")
	}
}
