// Package plistutils chains the alias, bookmark, and keyedarchive decoders
// the way a real macOS object graph nests them: a bookmark's embedded
// alias_data field re-enters the alias decoder, and a keyed archive's NSData
// payload re-enters the keyed-archive decoder when it is itself a nested
// archive.
package plistutils
