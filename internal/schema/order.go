package schema

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports classes whose supertypes or mixins depend on each
// other.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("inheritance cycle: %s", strings.Join(e.Path, " -> "))
}

// dependencyGraph maps a class to the declared classes it extends or mixes
// in.
type dependencyGraph map[string][]string

func buildDependencyGraph(decls []*ClassDecl) dependencyGraph {
	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		declared[d.Name] = true
	}
	graph := make(dependencyGraph, len(decls))
	for _, d := range decls {
		deps := []string{}
		// Only the named supertype must exist first; type arguments are
		// looked up when an instantiation is built.
		refs := make([]*Expr, 0, len(d.mixins)+1)
		if d.extends != nil {
			refs = append(refs, d.extends)
		}
		refs = append(refs, d.mixins...)
		for _, e := range refs {
			if declared[e.Name] && !contains(d.Params, e.Name) && !contains(deps, e.Name) {
				deps = append(deps, e.Name)
			}
		}
		sort.Strings(deps)
		graph[d.Name] = deps
	}
	return graph
}

// installOrder returns declared classes with every dependency before its
// dependents. Tarjan's algorithm emits components sinks first, which is
// exactly that order.
func installOrder(decls []*ClassDecl) ([]string, []error) {
	graph := buildDependencyGraph(decls)
	var errs []error
	var order []string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			errs = append(errs, &CycleError{Path: cyclePath(scc, graph)})
			continue
		}
		order = append(order, scc[0])
	}
	return order, errs
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	return contains(graph[node], node)
}

func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclePath walks the component from its smallest name back to itself.
func cyclePath(scc []string, graph dependencyGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	sorted := append([]string(nil), scc...)
	sort.Strings(sorted)
	start := sorted[0]

	path := []string{start}
	visited := map[string]bool{start: true}
	cur := start
	for {
		next := ""
		for _, w := range graph[cur] {
			if w == start {
				return append(path, start)
			}
			if members[w] && !visited[w] {
				next = w
				break
			}
		}
		if next == "" {
			return append(path, start)
		}
		path = append(path, next)
		visited[next] = true
		cur = next
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
