// Package graph implements the in-memory mutation engine for campaign flow
// graphs: node and edge lifecycle, cascading deletes, and structural checks.
package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zapflow/zapflow/pkg/models"
)

var (
	// ErrNodeNotFound indicates an operation referenced a node id that is
	// not present in the graph.
	ErrNodeNotFound = errors.New("node not found in graph")

	// ErrDuplicateNodeID indicates an attempt to insert a node whose id is
	// already taken.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrUnknownNodeType indicates a node type outside the closed tag set.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrStopNodeOutput indicates an edge originating from a stop node.
	// Stop nodes are terminal markers and accept only incoming edges.
	ErrStopNodeOutput = errors.New("stop node cannot have outgoing edges")

	// ErrSelfLoop indicates an edge whose source and target are the same node.
	ErrSelfLoop = errors.New("node cannot connect to itself")

	// ErrWouldCreateCycle indicates an edge that would make the graph cyclic.
	ErrWouldCreateCycle = errors.New("connection would create a cycle")
)

// validTypes is the closed node type set. Kept here rather than in
// pkg/nodetypes so the builder has no dependency on display metadata.
var validTypes = map[models.NodeType]struct{}{
	models.NodeTypeTrigger:             {},
	models.NodeTypeText:                {},
	models.NodeTypeImage:               {},
	models.NodeTypeVideo:               {},
	models.NodeTypeAudio:               {},
	models.NodeTypeDocument:            {},
	models.NodeTypeAI:                  {},
	models.NodeTypeAction:              {},
	models.NodeTypeCondition:           {},
	models.NodeTypeDelay:               {},
	models.NodeTypeHTTPRest:            {},
	models.NodeTypeStop:                {},
	models.NodeTypeIntegrationPerfex:   {},
	models.NodeTypeIntegrationChatwoot: {},
}

// Builder applies mutations to a single FlowGraph. All operations are
// synchronous and in-memory; persistence is an explicit, separate save step
// performed by the caller.
type Builder struct {
	graph *models.FlowGraph
}

// NewBuilder wraps an existing graph. A nil graph starts empty.
func NewBuilder(g *models.FlowGraph) *Builder {
	if g == nil {
		g = models.NewFlowGraph()
	}

	if g.Nodes == nil {
		g.Nodes = []*models.FlowNode{}
	}

	if g.Edges == nil {
		g.Edges = []*models.FlowEdge{}
	}

	return &Builder{graph: g}
}

// Graph returns the underlying graph.
func (b *Builder) Graph() *models.FlowGraph {
	return b.graph
}

// AddNode creates a node of the given type at the given canvas position with
// an empty config. Node ids are "{type}-{uuid}"; a random identifier avoids
// the collision risk of timestamp-derived ids under rapid creation.
func (b *Builder) AddNode(nodeType models.NodeType, position models.Position) (*models.FlowNode, error) {
	if _, ok := validTypes[nodeType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	node := &models.FlowNode{
		ID:       fmt.Sprintf("%s-%s", nodeType, uuid.New().String()),
		Type:     nodeType,
		Position: position,
		Data:     models.NodeData{Config: map[string]any{}},
	}

	b.graph.Nodes = append(b.graph.Nodes, node)

	return node, nil
}

// DeleteNode removes a node and every edge incident to it. The node and its
// dependent edges disappear in the same logical update.
func (b *Builder) DeleteNode(id string) error {
	index := -1

	for i, node := range b.graph.Nodes {
		if node.ID == id {
			index = i

			break
		}
	}

	if index < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	b.graph.Nodes = append(b.graph.Nodes[:index], b.graph.Nodes[index+1:]...)

	kept := b.graph.Edges[:0]

	for _, edge := range b.graph.Edges {
		if edge.Source != id && edge.Target != id {
			kept = append(kept, edge)
		}
	}

	b.graph.Edges = kept

	return nil
}

// Connect creates an edge from source to target. Both endpoints must exist,
// the source must not be a stop node, and the edge must not introduce a
// self-loop or a cycle.
func (b *Builder) Connect(source, target string) (*models.FlowEdge, error) {
	sourceNode := b.graph.NodeByID(source)
	if sourceNode == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, source)
	}

	if b.graph.NodeByID(target) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}

	if sourceNode.Type == models.NodeTypeStop {
		return nil, ErrStopNodeOutput
	}

	if source == target {
		return nil, ErrSelfLoop
	}

	if b.reachable(target, source) {
		return nil, ErrWouldCreateCycle
	}

	edge := &models.FlowEdge{
		ID:     "edge-" + uuid.New().String(),
		Source: source,
		Target: target,
	}

	b.graph.Edges = append(b.graph.Edges, edge)

	return edge, nil
}

// Disconnect removes the edge with the given id. Unknown ids are a no-op so
// repeated disconnects are safe.
func (b *Builder) Disconnect(edgeID string) {
	for i, edge := range b.graph.Edges {
		if edge.ID == edgeID {
			b.graph.Edges = append(b.graph.Edges[:i], b.graph.Edges[i+1:]...)

			return
		}
	}
}

// UpdateNodeConfig replaces a node's configuration bag wholesale. Shape
// validation against the node type is the registry's concern, not the
// builder's.
func (b *Builder) UpdateNodeConfig(id string, config map[string]any) error {
	node := b.graph.NodeByID(id)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	if config == nil {
		config = map[string]any{}
	}

	node.Data.Config = config

	return nil
}

// Validate checks the structural invariants of the wrapped graph: unique
// node ids and edge endpoints that reference existing nodes.
func (b *Builder) Validate() error {
	seen := make(map[string]struct{}, len(b.graph.Nodes))

	for _, node := range b.graph.Nodes {
		if _, dup := seen[node.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}

		seen[node.ID] = struct{}{}
	}

	for _, edge := range b.graph.Edges {
		if _, ok := seen[edge.Source]; !ok {
			return fmt.Errorf("%w: edge %s source %s", ErrNodeNotFound, edge.ID, edge.Source)
		}

		if _, ok := seen[edge.Target]; !ok {
			return fmt.Errorf("%w: edge %s target %s", ErrNodeNotFound, edge.ID, edge.Target)
		}
	}

	return nil
}

// reachable reports whether "to" can be reached from "from" following edge
// direction. Used for the connect-time cycle check.
func (b *Builder) reachable(from, to string) bool {
	if from == to {
		return true
	}

	adjacent := make(map[string][]string, len(b.graph.Edges))
	for _, edge := range b.graph.Edges {
		adjacent[edge.Source] = append(adjacent[edge.Source], edge.Target)
	}

	visited := map[string]struct{}{from: {}}
	stack := []string{from}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range adjacent[current] {
			if next == to {
				return true
			}

			if _, ok := visited[next]; ok {
				continue
			}

			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	return false
}
