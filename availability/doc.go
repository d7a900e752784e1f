// Package availability indexes the metadata combinations that exist in a
// dataset.
//
// An Availability is built once from a (lazy) sequence of per-record metadata
// mappings, or loaded from a precomputed resource file. It answers:
//
//   - UniqueValues: the distinct values of every key, in order of first appearance
//   - Contains: whether an exact metadata tuple exists
//   - Check: whether a keyword request (scalars or lists) only asks for
//     combinations that exist, reported as climetlab.Issues
//   - IsFullHypercube: whether the record count equals the product of the
//     value counts of the varying keys
//
// IsFullHypercube is a count-equality heuristic: a sparse set whose size
// happens to equal the product is reported as a hypercube. Callers rely on
// this cheap test; do not replace it with a per-cell check.
//
// An Availability is immutable once built and safe for concurrent readers.
package availability
