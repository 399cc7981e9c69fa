// Package traits holds the trait document model and the keyed hash transform.
//
// A TraitSet is fetched once, hashed, and discarded. The key it carries is
// treated as ephemeral: it is never persisted and never rendered by String or
// by slog (see TraitSet.LogValue).
//
// Every trait is hashed with BLAKE2b keyed by the document's key and a 64-byte
// output, then rendered as 128 lowercase hex characters. Output order matches
// input order.
package traits
