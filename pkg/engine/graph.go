// pkg/engine/graph.go
package engine

import (
	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

// Node is one schedulable unit in the resolved recipe graph. Identity is
// the instance ID (runtime_name falling back to the module type name), so
// a module type may appear several times with different argument bindings.
type Node struct {
	ID         string
	ModuleType string
	Preflight  bool
	Wants      []string
	Args       map[string]interface{}
	Inputs     map[string]string
}

// Graph is the validated dependency structure of a recipe: acyclic wants
// edges between module nodes, plus a dependency-free preflight set. Nodes
// carry string identity and adjacency sets rather than cross-pointers,
// which keeps cycle detection and concurrent run-state mutation simple.
type Graph struct {
	nodes      map[string]*Node
	order      []string            // declaration order, preflights first
	dependents map[string][]string // reverse adjacency
}

// BuildGraph resolves a recipe into a Graph, verifying that:
//   - instance IDs are unique and module entries are named
//   - preflights declare no wants of their own
//   - every wants entry resolves to a module node (never a preflight)
//   - the wants relation is acyclic
//   - every sentinel ("") argument slot binds to exactly one producer,
//     either via a single wants entry or an explicit inputs mapping
//   - every "@name" reference resolves to a declared recipe argument
func BuildGraph(rec *recipe.Recipe) (*Graph, error) {
	if err := rec.Validate(); err != nil {
		return nil, WrapGraphError(err)
	}

	g := &Graph{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
	}

	for _, spec := range rec.Preflights {
		if len(spec.Wants) > 0 {
			return nil, NewPreflightEdgeError(spec.InstanceID(), spec.Wants[0])
		}
		g.addNode(spec, true)
	}
	for _, spec := range rec.Modules {
		g.addNode(spec, false)
	}

	for _, id := range g.order {
		node := g.nodes[id]
		for _, want := range node.Wants {
			target, ok := g.nodes[want]
			if !ok {
				return nil, NewUnknownDependencyError(id, want)
			}
			if target.Preflight {
				return nil, NewPreflightEdgeError(id, want)
			}
			g.dependents[want] = append(g.dependents[want], id)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, NewCycleError(cycle)
	}

	for _, id := range g.order {
		if err := g.checkSentinels(g.nodes[id]); err != nil {
			return nil, err
		}
		if err := checkReferences(g.nodes[id], rec); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (g *Graph) addNode(spec recipe.ModuleSpec, preflight bool) {
	id := spec.InstanceID()
	g.nodes[id] = &Node{
		ID:         id,
		ModuleType: spec.Name,
		Preflight:  preflight,
		Wants:      spec.Wants,
		Args:       spec.Args,
		Inputs:     spec.Inputs,
	}
	g.order = append(g.order, id)
}

// Node returns the node with the given instance ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in recipe declaration order, preflights first.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Preflights returns the preflight nodes in declaration order.
func (g *Graph) Preflights() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Preflight {
			out = append(out, n)
		}
	}
	return out
}

// Modules returns the pipeline module nodes in declaration order.
func (g *Graph) Modules() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if !n.Preflight {
			out = append(out, n)
		}
	}
	return out
}

// Dependents returns the instance IDs of the direct consumers of id.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// Len returns the total node count, preflights included.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// findCycle runs DFS coloring over the wants edges and returns the node
// IDs forming a cycle, or nil when the graph is acyclic.
func (g *Graph) findCycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)
	color := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = gray
		stack = append(stack, id)
		for _, want := range g.nodes[id].Wants {
			switch color[want] {
			case gray:
				// Reconstruct the cycle from the stack back to want.
				for i, s := range stack {
					if s == want {
						return append(append([]string{}, stack[i:]...), want)
					}
				}
			case white:
				if cycle := visit(want); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, id := range g.order {
		if color[id] == white {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// checkSentinels verifies that every empty-string argument slot of node
// has an unambiguous upstream producer.
func (g *Graph) checkSentinels(node *Node) error {
	wants := make(map[string]bool, len(node.Wants))
	for _, w := range node.Wants {
		wants[w] = true
	}

	for slot, producer := range node.Inputs {
		if !wants[producer] {
			return NewAmbiguousInputError(node.ID, slot,
				"inputs mapping names \""+producer+"\" which is not in wants")
		}
	}

	for slot, value := range node.Args {
		s, ok := value.(string)
		if !ok || s != "" {
			continue
		}
		if _, mapped := node.Inputs[slot]; mapped {
			continue
		}
		switch len(node.Wants) {
		case 0:
			return NewAmbiguousInputError(node.ID, slot, "sentinel value with no dependency to inherit from")
		case 1:
			// Unambiguous: the single dependency fills the slot.
		default:
			return NewAmbiguousInputError(node.ID, slot,
				"sentinel value with multiple dependencies; add an explicit inputs mapping")
		}
	}
	return nil
}

// checkReferences verifies pre-run that every "@name" token in the node's
// raw args names a declared recipe argument.
func checkReferences(node *Node, rec *recipe.Recipe) error {
	for _, ref := range collectReferences(node.Args) {
		if rec.ArgSpec(ref) == nil {
			return NewUnresolvedReferenceError(node.ID, ref)
		}
	}
	return nil
}
