package graph

import "github.com/zapflow/zapflow/pkg/models"

// FlowOrder returns the graph's nodes in funnel step order: a breadth-first
// traversal from the trigger node, with nodes unreachable from the trigger
// appended in authoring order. For branching graphs this approximates the
// true traversal better than raw insertion order, since sessions may follow
// either branch of a condition.
func FlowOrder(g *models.FlowGraph) []*models.FlowNode {
	if g == nil || len(g.Nodes) == 0 {
		return nil
	}

	triggers := g.TriggerNodes()
	if len(triggers) == 0 {
		ordered := make([]*models.FlowNode, len(g.Nodes))
		copy(ordered, g.Nodes)

		return ordered
	}

	adjacent := make(map[string][]string, len(g.Edges))
	for _, edge := range g.Edges {
		adjacent[edge.Source] = append(adjacent[edge.Source], edge.Target)
	}

	visited := make(map[string]struct{}, len(g.Nodes))
	ordered := make([]*models.FlowNode, 0, len(g.Nodes))

	queue := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		queue = append(queue, trigger.ID)
		visited[trigger.ID] = struct{}{}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if node := g.NodeByID(id); node != nil {
			ordered = append(ordered, node)
		}

		// Successors of a node keep the order their edges were created in,
		// which mirrors how branches were drawn.
		for _, next := range adjacent[id] {
			if _, ok := visited[next]; ok {
				continue
			}

			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}

	for _, node := range g.Nodes {
		if _, ok := visited[node.ID]; !ok {
			ordered = append(ordered, node)
		}
	}

	return ordered
}
