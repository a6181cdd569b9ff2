// Package alias decodes classic Apple Alias records (versions 2 and 3): a
// fixed-layout header and body followed by a tag-length-value list of named
// fields. An alias_data TLV field may itself contain a nested alias blob,
// which is decoded recursively up to a bounded depth.
package alias
