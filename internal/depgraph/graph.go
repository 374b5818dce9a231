// Package depgraph builds the directed file-dependency graph used by
// root-cause ranking.
package depgraph

import "sort"

// Graph maps files to the files they import (forward edges) and, derived,
// the files that import them (reverse edges). Every file handed to the
// builder appears as a node even when it has no edges.
type Graph struct {
	imports    map[string]map[string]bool
	dependents map[string]map[string]bool
	exports    map[string][]string
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		imports:    make(map[string]map[string]bool),
		dependents: make(map[string]map[string]bool),
		exports:    make(map[string][]string),
	}
}

// AddNode ensures file exists in the graph, with no edges if none are added
func (g *Graph) AddNode(file string) {
	if g.imports[file] == nil {
		g.imports[file] = make(map[string]bool)
	}
	if g.dependents[file] == nil {
		g.dependents[file] = make(map[string]bool)
	}
}

// AddEdge records that from imports to. Both endpoints become nodes.
// Self-edges are ignored; cycles are legal.
func (g *Graph) AddEdge(from, to string) {
	if from == to {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	g.imports[from][to] = true
	g.dependents[to][from] = true
}

// SetExports records the exported names of a file
func (g *Graph) SetExports(file string, names []string) {
	g.AddNode(file)
	g.exports[file] = names
}

// Exports returns the exported names recorded for a file
func (g *Graph) Exports(file string) []string {
	return g.exports[file]
}

// Imports returns the files the given file imports, sorted
func (g *Graph) Imports(file string) []string {
	return sortedKeys(g.imports[file])
}

// Dependents returns the files that import the given file, sorted
func (g *Graph) Dependents(file string) []string {
	return sortedKeys(g.dependents[file])
}

// DependentsCount returns how many files import the given file
func (g *Graph) DependentsCount(file string) int {
	return len(g.dependents[file])
}

// Files returns every node in the graph, sorted
func (g *Graph) Files() []string {
	return sortedKeys(g.imports)
}

// HasNode reports whether file is a node in the graph
func (g *Graph) HasNode(file string) bool {
	_, ok := g.imports[file]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
