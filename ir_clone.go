package bfopt

import cp "github.com/jinzhu/copier"

// CloneRoot deep-clones an IR tree, following the reference toolchain's
// Instruction.Clone idiom (copier.Copy into a fresh zero value) at every
// node and recursing manually into the slice fields copier.Copy would
// otherwise only shallow-copy.
func CloneRoot(n *IRNode) *IRNode {
	if n == nil {
		return nil
	}

	clone := &IRNode{}
	cp.Copy(clone, n)

	clone.Children = cloneNodes(n.Children)
	clone.Body = cloneNodes(n.Body)
	clone.Tail = cloneNodes(n.Tail)

	if n.VecValue != nil {
		clone.VecValue = append([]byte(nil), n.VecValue...)
	}

	return clone
}

func cloneNodes(nodes []*IRNode) []*IRNode {
	if nodes == nil {
		return nil
	}
	out := make([]*IRNode, len(nodes))
	for i, n := range nodes {
		out[i] = CloneRoot(n)
	}
	return out
}
