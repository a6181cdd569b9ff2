// Package codec holds the small set of primitives shared by the alias,
// bookmark, and keyedarchive decoders: epoch-aware timestamp conversion,
// bitmask-to-name flag rendering, HFSUniStr255 strings, and byte-order-aware
// UUID construction. None of it touches I/O; everything here is a pure
// function over bytes already in memory.
package codec
