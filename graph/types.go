package graph

import "math"

// TypeKind classifies a schema type declaration.
type TypeKind string

const (
	KindObject    TypeKind = "object"
	KindInterface TypeKind = "interface"
	KindEnum      TypeKind = "enum"
	KindInput     TypeKind = "input"
	KindUnion     TypeKind = "union"
	KindScalar    TypeKind = "scalar"
)

// Field is one named field of a type, with its rendered type string
// (wrappers included, e.g. "[Person!]!").
type Field struct {
	Name       string `json:"name"`
	TypeString string `json:"type"`
}

// TypeNode is one retained schema type. ID doubles as the display name and is
// unique within a Model.
type TypeNode struct {
	ID            string   `json:"id"`
	Kind          TypeKind `json:"kind"`
	Fields        []Field  `json:"fields,omitempty"`
	Directives    []string `json:"directives,omitempty"`
	PossibleTypes []string `json:"possibleTypes,omitempty"`
	EnumValues    []string `json:"enumValues,omitempty"`
}

// Radius returns the node's rendered bounding radius, derived from label
// length and field count so bigger types claim more collision room.
func (n *TypeNode) Radius() float64 {
	r := 14 + 0.9*float64(len(n.ID)) + 3*math.Sqrt(float64(len(n.Fields)))
	if r > 48 {
		r = 48
	}
	return r
}

// FieldEdge links a source type to the base type one of its fields resolves
// to. Label carries the field name; edges between the same pair with
// different labels are distinct and all retained.
type FieldEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Model is a node/edge graph over retained schema types. Every edge endpoint
// references a key present in Nodes; unresolved references never become
// edges.
type Model struct {
	Nodes map[string]*TypeNode
	Edges []FieldEdge

	order []string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Nodes: make(map[string]*TypeNode)}
}

// AddNode inserts a node, tracking insertion order for deterministic
// iteration. Re-adding an existing ID is a no-op.
func (m *Model) AddNode(n *TypeNode) {
	if _, exists := m.Nodes[n.ID]; exists {
		return
	}
	m.Nodes[n.ID] = n
	m.order = append(m.order, n.ID)
}

// AddEdge appends an edge when both endpoints are present and reports whether
// it was added.
func (m *Model) AddEdge(source, target, label string) bool {
	if _, ok := m.Nodes[source]; !ok {
		return false
	}
	if _, ok := m.Nodes[target]; !ok {
		return false
	}
	m.Edges = append(m.Edges, FieldEdge{Source: source, Target: target, Label: label})
	return true
}

// Node returns the node for id.
func (m *Model) Node(id string) (*TypeNode, bool) {
	n, ok := m.Nodes[id]
	return n, ok
}

// HasNode reports whether id is present.
func (m *Model) HasNode(id string) bool {
	_, ok := m.Nodes[id]
	return ok
}

// Order returns node IDs in insertion order.
func (m *Model) Order() []string {
	return m.order
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int {
	return len(m.Nodes)
}

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int {
	return len(m.Edges)
}
