// Package tree provides the phylogenetic tree and reticulate network model.
//
// # Overview
//
// A [Tree] owns an arena of [Node] values indexed by integer ID. Ownership is
// strictly parent to children: [Node.Children] holds child indices and
// [Node.Parent] is a non-owning back reference ([NoParent] for the root).
// There are no pointer cycles, so copying a tree is a flat loop over the arena.
//
// The structure is almost a tree. Reticulation events are encoded as pairs of
// nodes sharing a [Node.HybridID]: an internal "source" node where the
// reticulate lineage joins and a "destination" leaf hanging below the other
// parent. Together they turn the tree into a rooted DAG. Pairs are exposed
// through [Tree.RecombEdgeMap].
//
// # Heights
//
// Branch lengths are stored as given by the input (NaN when absent). Heights
// are derived: the root starts at 0, each child sits at parent height minus its
// branch length, and the whole tree is then shifted so the youngest leaf is at
// height 0. Larger heights are older. [Tree.IsTimeTree] reports whether every
// height is defined.
//
// # Construction
//
// Parsers build trees top-down:
//
//	t := tree.New()
//	a := t.AddChild(t.Root().ID)
//	a.Label = "A"
//	a.BranchLength = 1
//	if err := t.Init(); err != nil {
//	    return err
//	}
//
// [Tree.Init] computes heights and validates reticulation pairs. Every
// structural mutation (sort, reroot, collapse, strip) invalidates cached views
// and keeps heights up to date.
//
// # Concurrency
//
// Trees are not safe for concurrent mutation. Use [Tree.Copy] to hand an
// independent instance to another caller.
package tree
