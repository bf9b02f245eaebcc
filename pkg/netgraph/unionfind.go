package netgraph

// unionFind is a disjoint-set forest over dense int ids.
type unionFind struct {
	parent []int
	rank   []uint8
}

// add creates a new singleton set and returns its id.
func (u *unionFind) add() int {
	id := len(u.parent)
	u.parent = append(u.parent, id)
	u.rank = append(u.rank, 0)
	return id
}

func (u *unionFind) len() int {
	return len(u.parent)
}

// find returns the root of x, compressing the path on the way.
func (u *unionFind) find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for x != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

// union merges the sets holding a and b by rank. It reports whether the
// sets were distinct.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}
