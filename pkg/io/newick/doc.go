// Package newick reads and writes Extended-Newick trees.
//
// The dialect covers plain Newick plus the common extensions: quoted labels
// with doubled-quote escaping, hybrid tags (label#H1) pairing the two nodes of
// a reticulation, and BEAST-style annotation blocks ([&key=value,...]) before
// or after the branch length. Plain bracket comments are ignored.
//
// Parse reads exactly one tree. Splitting a document into several trees is
// left to package io.
//
//	t, err := newick.Parse("((A:1,(B:1)#H1:1):1,(C:1,#H1:1):1);")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(newick.Format(t))
package newick
