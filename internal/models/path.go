package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ConnectionStep is one edge in a path: FromName collaborated with ToName on Track.
//
// An empty Track means the backend returned no track for the hop.
type ConnectionStep struct {
	FromID   int64  `json:"from_id"`
	ToID     int64  `json:"to_id"`
	FromName string `json:"from_name"`
	ToName   string `json:"to_name"`
	Track    string `json:"track,omitempty"`
	ToMBID   string `json:"to_mbid,omitempty"`
}

// HasTrack reports whether the step carries a usable track title.
func (s ConnectionStep) HasTrack() bool {
	return strings.TrimSpace(s.Track) != ""
}

// Edge returns the undirected edge between the step's endpoints.
func (s ConnectionStep) Edge() Edge {
	return NewEdge(s.FromID, s.ToID)
}

// Path is an ordered sequence of steps from source to target.
type Path []ConnectionStep

// Signature is the ordered "from->to" concatenation of every step, joined by "|".
//
// Two paths are the same route exactly when their signatures are equal.
func (p Path) Signature() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatInt(s.FromID, 10))
		b.WriteString("->")
		b.WriteString(strconv.FormatInt(s.ToID, 10))
	}
	return b.String()
}

// Endpoints returns the first step's from_id and the last step's to_id.
func (p Path) Endpoints() (source, target int64, ok bool) {
	if len(p) == 0 {
		return 0, 0, false
	}
	return p[0].FromID, p[len(p)-1].ToID, true
}

// Degrees is the number of hops.
func (p Path) Degrees() int { return len(p) }

// Clone returns a copy that shares nothing with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Edge is an undirected artist pair with A <= B.
type Edge struct {
	A int64
	B int64
}

// NewEdge builds an order-normalized edge so {a,b} and {b,a} compare equal.
func NewEdge(a, b int64) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

func (e Edge) String() string {
	return fmt.Sprintf("{%d,%d}", e.A, e.B)
}

// Less orders edges by A, then B.
func (e Edge) Less(o Edge) bool {
	if e.A != o.A {
		return e.A < o.A
	}
	return e.B < o.B
}

// MarshalJSON encodes the edge as a two element array, the backend's exclude_edges format.
func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{e.A, e.B})
}

// UnmarshalJSON accepts a two element array in either order.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var pair []int64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("edge must have exactly 2 ids, got %d", len(pair))
	}
	*e = NewEdge(pair[0], pair[1])
	return nil
}
