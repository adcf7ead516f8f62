package models

import "encoding/json"

// NodeType identifies the behavior of a flow node. The set is closed; the
// registry in pkg/nodetypes enumerates every valid value.
type NodeType string

const (
	NodeTypeTrigger             NodeType = "trigger"
	NodeTypeText                NodeType = "text"
	NodeTypeImage               NodeType = "image"
	NodeTypeVideo               NodeType = "video"
	NodeTypeAudio               NodeType = "audio"
	NodeTypeDocument            NodeType = "document"
	NodeTypeAI                  NodeType = "ai"
	NodeTypeAction              NodeType = "action"
	NodeTypeCondition           NodeType = "condition"
	NodeTypeDelay               NodeType = "delay"
	NodeTypeHTTPRest            NodeType = "httprest"
	NodeTypeStop                NodeType = "stop"
	NodeTypeIntegrationPerfex   NodeType = "integration_perfex"
	NodeTypeIntegrationChatwoot NodeType = "integration_chatwoot"
)

// Position is the authoring-time canvas coordinate of a node. It has no
// execution semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData wraps the per-type configuration bag. The extra level matches the
// persisted wire shape: {id, type, position, data: {config}}.
type NodeData struct {
	Config map[string]any `json:"config"`
}

// FlowNode is a single typed step in a campaign graph. Nodes are exclusively
// owned by their FlowGraph.
type FlowNode struct {
	ID       string   `json:"id"       validate:"required"`
	Type     NodeType `json:"type"     validate:"required"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Config returns the node's configuration bag, never nil.
func (n *FlowNode) Config() map[string]any {
	if n.Data.Config == nil {
		n.Data.Config = make(map[string]any)
	}

	return n.Data.Config
}

// FlowEdge connects a source node to a target node.
type FlowEdge struct {
	ID     string `json:"id"     validate:"required"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// FlowGraph holds the nodes and edges of a campaign. Node order is authoring
// insertion order, not execution order.
type FlowGraph struct {
	Nodes []*FlowNode `json:"nodes"`
	Edges []*FlowEdge `json:"edges"`
}

// NewFlowGraph returns an empty graph with non-nil slices so the persisted
// shape always carries both arrays.
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{
		Nodes: []*FlowNode{},
		Edges: []*FlowEdge{},
	}
}

// NodeByID returns the node with the given id, or nil.
func (g *FlowGraph) NodeByID(id string) *FlowNode {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// TriggerNodes returns every node with the trigger type, in authoring order.
func (g *FlowGraph) TriggerNodes() []*FlowNode {
	var triggers []*FlowNode

	for _, node := range g.Nodes {
		if node.Type == NodeTypeTrigger {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// Clone returns a deep copy of the graph. Node ids are preserved; config
// values are copied through JSON so nested maps do not alias.
func (g *FlowGraph) Clone() *FlowGraph {
	clone := NewFlowGraph()

	for _, node := range g.Nodes {
		clone.Nodes = append(clone.Nodes, &FlowNode{
			ID:       node.ID,
			Type:     node.Type,
			Position: node.Position,
			Data:     NodeData{Config: cloneConfig(node.Data.Config)},
		})
	}

	for _, edge := range g.Edges {
		clone.Edges = append(clone.Edges, &FlowEdge{
			ID:     edge.ID,
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	return clone
}

func cloneConfig(config map[string]any) map[string]any {
	if config == nil {
		return nil
	}

	raw, err := json.Marshal(config)
	if err != nil {
		// Config bags come from JSON in the first place, so this only
		// happens for values injected programmatically; fall back to a
		// shallow copy.
		shallow := make(map[string]any, len(config))
		for k, v := range config {
			shallow[k] = v
		}

		return shallow
	}

	clone := make(map[string]any, len(config))
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil
	}

	return clone
}
