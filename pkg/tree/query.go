package tree

// CladeNodes returns, in preorder, the given nodes plus every internal node
// whose children all belong to the result. Selecting the leaves of a subtree
// therefore selects the whole subtree.
func (t *Tree) CladeNodes(ids []int) []int {
	clade, _ := t.selection(ids)
	return t.filterPreorder(clade)
}

// AncestralNodes returns, in preorder, every strict ancestor of the given
// nodes.
func (t *Tree) AncestralNodes(ids []int) []int {
	_, anc := t.selection(ids)
	return t.filterPreorder(anc)
}

// selection computes clade membership and ancestry in one bottom-up pass.
func (t *Tree) selection(ids []int) (clade, ancestral []bool) {
	selected := make([]bool, len(t.nodes))
	for _, id := range ids {
		if id >= 0 && id < len(t.nodes) {
			selected[id] = true
		}
	}
	clade = make([]bool, len(t.nodes))
	ancestral = make([]bool, len(t.nodes))

	order := t.preorderIDs()
	for i := len(order) - 1; i >= 0; i-- {
		n := t.nodes[order[i]]
		covered := !n.IsLeaf()
		for _, c := range n.Children {
			covered = covered && clade[c]
			if selected[c] || ancestral[c] {
				ancestral[n.ID] = true
			}
		}
		clade[n.ID] = selected[n.ID] || covered
	}
	return clade, ancestral
}

func (t *Tree) filterPreorder(set []bool) []int {
	var out []int
	for _, id := range t.preorderIDs() {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
