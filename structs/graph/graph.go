//
// Package graph is an undirected, unit-weight graph keyed by string nodes with a deterministic
// shortest path search.
//
package graph

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownNode = errors.New("unknown node")
	ErrNoPath      = errors.New("no path between nodes")
)

type Graph struct {
	edges map[string]map[string]struct{}
}

func New() *Graph {
	return &Graph{
		edges: make(map[string]map[string]struct{}),
	}
}

func (o *Graph) AddNode(node string) {
	if _, ok := o.edges[node]; !ok {
		o.edges[node] = make(map[string]struct{})
	}
}

//
// AddEdge connects a and b in both directions, adding either node if it is missing.
//
func (o *Graph) AddEdge(a string, b string) {
	o.AddNode(a)
	o.AddNode(b)

	o.edges[a][b] = struct{}{}
	o.edges[b][a] = struct{}{}
}

func (o *Graph) HasNode(node string) bool {
	_, ok := o.edges[node]

	return ok
}

func (o *Graph) HasEdge(a string, b string) bool {
	_, ok := o.edges[a][b]

	return ok
}

//
// Nodes returns every node in lexicographic order.
//
func (o *Graph) Nodes() []string {
	nodes := make([]string, 0, len(o.edges))

	for node := range o.edges {
		nodes = append(nodes, node)
	}

	sort.Strings(nodes)

	return nodes
}

//
// Neighbors returns the nodes adjacent to node in lexicographic order.
//
func (o *Graph) Neighbors(node string) []string {
	neighbors := make([]string, 0, len(o.edges[node]))

	for n := range o.edges[node] {
		neighbors = append(neighbors, n)
	}

	sort.Strings(neighbors)

	return neighbors
}

//
// ShortestPath returns the node sequence of a minimum-hop path from one node to another, both ends
// included. Among equally short paths the result is always the same: the search settles nodes in
// (distance, name) order and a node's predecessor only changes on a strict improvement.
//
func (o *Graph) ShortestPath(from string, to string) ([]string, error) {
	for _, node := range []string{from, to} {
		if !o.HasNode(node) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, node)
		}
	}

	dist := map[string]int{from: 0}
	prev := make(map[string]string)
	settled := make(map[string]bool)

	for {
		//
		// Pick the closest unsettled node, breaking ties by name.
		//
		current, found := "", false

		for node, d := range dist {
			if settled[node] {
				continue
			}

			if !found || d < dist[current] || (d == dist[current] && node < current) {
				current, found = node, true
			}
		}

		if !found {
			return nil, fmt.Errorf("%w: %q to %q", ErrNoPath, from, to)
		}

		if current == to {
			break
		}

		settled[current] = true

		//
		// Relax every edge leaving the node we just settled.
		//
		for _, next := range o.Neighbors(current) {
			if settled[next] {
				continue
			}

			if d, ok := dist[next]; !ok || dist[current]+1 < d {
				dist[next] = dist[current] + 1
				prev[next] = current
			}
		}
	}

	//
	// Walk the predecessor chain back from the destination.
	//
	path := []string{to}

	for node := to; node != from; {
		node = prev[node]
		path = append(path, node)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}
