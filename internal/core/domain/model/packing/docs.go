// Package packing models the packing job built from a completed wave,
// its items, the photo evidence and the seals captured at completion.
package packing
