// Package nodetypes is the registry of campaign node types: display
// metadata, per-type description derivation, and config schema validation.
// Everything here is pure and total; Describe never panics and never returns
// an empty string, whatever shape the config bag has.
package nodetypes

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
	"github.com/zapflow/zapflow/pkg/models"
)

// DescribeFunc derives a human-readable summary from a node's config bag.
type DescribeFunc func(config map[string]any) string

// Definition holds the registry entry for one node type.
type Definition struct {
	Type     models.NodeType
	Name     string
	Describe DescribeFunc
	Schema   map[string]any
}

// Registry maps node type tags to their definitions.
type Registry struct {
	definitions map[models.NodeType]Definition
}

// NewRegistry returns a registry with every built-in node type registered.
func NewRegistry() *Registry {
	r := &Registry{definitions: make(map[models.NodeType]Definition)}

	for _, def := range builtinDefinitions() {
		r.definitions[def.Type] = def
	}

	return r
}

// Get returns the definition for a node type.
func (r *Registry) Get(nodeType models.NodeType) (Definition, bool) {
	def, ok := r.definitions[nodeType]

	return def, ok
}

// Types returns every registered node type tag, sorted.
func (r *Registry) Types() []models.NodeType {
	types := make([]models.NodeType, 0, len(r.definitions))
	for nodeType := range r.definitions {
		types = append(types, nodeType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Describe returns the summary for a node type and config. Unknown types get
// a generic fallback so the function stays total.
func (r *Registry) Describe(nodeType models.NodeType, config map[string]any) string {
	def, ok := r.definitions[nodeType]
	if !ok {
		return fmt.Sprintf("Unknown node type: %s", nodeType)
	}

	return def.Describe(config)
}

// ValidateConfig checks a config bag against the node type's JSON schema and
// returns the list of problems. The result is advisory: the mutation engine
// accepts any shape, and only the publish gate enforces trigger requirements.
func (r *Registry) ValidateConfig(nodeType models.NodeType, config map[string]any) []string {
	def, ok := r.definitions[nodeType]
	if !ok {
		return []string{fmt.Sprintf("unknown node type: %s", nodeType)}
	}

	if def.Schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.Schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return []string{err.Error()}
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		problems = append(problems, resultError.String())
	}

	return problems
}

// HealthCheck reports whether the registry is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.definitions) == 0 {
		return "Node type registry is empty", false
	}

	return fmt.Sprintf("Node type registry loaded with %d types", len(r.definitions)), true
}
