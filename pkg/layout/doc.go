/*
Package layout turns a story graph into a linear, printable book.

Layout orders nodes by their logical page number, splits long node text into size-bounded
chunks on whitespace boundaries and assembles the physical sequence: a cover, a back
cover, then one physical page per chunk. Renumber resolves every "turn to page N"
reference and every continuation marker from final physical positions, so it must run
again after any reordering; Shuffle does that itself.
*/
package layout
