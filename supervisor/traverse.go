package supervisor

import "github.com/casperlabs/highway-era-supervisor/common/hash"

// bfsDescendants performs a deduplicated breadth-first traversal over a
// tree of era hashes, starting at (but not including) root. children is
// invoked once per visited node to discover its children; implementations
// may have side effects (e.g. lazily loading an era runtime), which is
// exactly what propagateLatestMessage relies on.
//
// The returned slice is in BFS visitation order and contains no
// duplicates, even if the underlying tree has converging paths.
func bfsDescendants(root hash.Hash, children func(hash.Hash) []hash.Hash) []hash.Hash {
	visited := map[hash.Hash]struct{}{root: {}}
	queue := children(root)
	var order []hash.Hash

	for i := 0; i < len(queue); i++ {
		h := queue[i]
		if _, ok := visited[h]; ok {
			continue
		}
		visited[h] = struct{}{}
		order = append(order, h)
		queue = append(queue, children(h)...)
	}

	return order
}
