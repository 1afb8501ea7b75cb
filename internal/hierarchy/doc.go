// Package hierarchy turns the algorithm's parent/child table into a directed
// acyclic graph of terms over leaf genes.
//
// Terms are the internal groupings inferred by the algorithm. Genes are the
// leaves, taken from the input edge list. A node is a gene when it is the
// child of a row flagged "gene", or when it never appears as a parent.
//
// Build is strict: every structural row must map to exactly one
// parent-to-child relationship, the graph must be acyclic, and every row
// of the optional feature table must name genes that exist as leaves.
package hierarchy
