// Package measure computes shape and ratio statistics over decoded audio
// content.
//
// Audio arrives in many shapes: a flat mono buffer, channel-first matrices,
// batched tensors, or loosely typed nested slices. Every function here works
// on the Sequence view and inspects shape by repeatedly descending into the
// first element, so the logical rank never has to be known up front. Sibling
// elements beyond index 0 are never inspected; ragged content is measured
// along the path through its first elements only.
//
// The ratio helpers guard divisions with an epsilon instead of failing, so an
// empty clip yields a very large ratio rather than an error.
package measure
