package kernel

import "sort"

// edgeKey identifies an undirected edge by its sorted vertex indices.
type edgeKey [2]int

func makeEdgeKey(a, b int) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// edgeFaces maps every edge to the faces that use it.
func (m *Mesh) edgeFaces() map[edgeKey][]int {
	edges := make(map[edgeKey][]int, len(m.Faces)*3/2)
	for fi, f := range m.Faces {
		for j := 0; j < 3; j++ {
			k := makeEdgeKey(f[j], f[(j+1)%3])
			edges[k] = append(edges[k], fi)
		}
	}
	return edges
}

// FaceAdjacency returns, for every face, the faces sharing an edge with it.
// Neighbours are listed in ascending order without duplicates.
func (m *Mesh) FaceAdjacency() [][]int {
	adj := make([][]int, len(m.Faces))
	seen := make([]map[int]bool, len(m.Faces))
	for _, faces := range m.edgeFaces() {
		for _, a := range faces {
			for _, b := range faces {
				if a == b {
					continue
				}
				if seen[a] == nil {
					seen[a] = make(map[int]bool)
				}
				if !seen[a][b] {
					seen[a][b] = true
					adj[a] = append(adj[a], b)
				}
			}
		}
	}
	for i := range adj {
		sort.Ints(adj[i])
	}
	return adj
}

// unionFind is a disjoint-set forest over face indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	// Keep the lowest face index as the representative.
	if ra < rb {
		uf.parent[rb] = ra
	} else {
		uf.parent[ra] = rb
	}
}

// ComponentFaces groups faces into maximal sets connected through shared
// edges. Watertightness is not required. Groups are ordered by their lowest
// face index and list faces in ascending order.
func (m *Mesh) ComponentFaces() [][]int {
	uf := newUnionFind(len(m.Faces))
	for _, faces := range m.edgeFaces() {
		for _, f := range faces[1:] {
			uf.union(faces[0], f)
		}
	}

	groupOf := make(map[int]int)
	var groups [][]int
	for fi := range m.Faces {
		root := uf.find(fi)
		g, ok := groupOf[root]
		if !ok {
			g = len(groups)
			groupOf[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], fi)
	}
	return groups
}

// Split returns one submesh per connected component, in ComponentFaces order.
func (m *Mesh) Split() []*Mesh {
	groups := m.ComponentFaces()
	out := make([]*Mesh, len(groups))
	for i, g := range groups {
		out[i] = m.Submesh(g)
	}
	return out
}
