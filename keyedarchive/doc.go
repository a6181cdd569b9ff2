// Package keyedarchive resolves an NSKeyedArchiver/NSUnarchiver object
// graph ($archiver/$version/$top/$objects) into plain Go values, dispatching
// each archived object to a per-class processor and following CF$UID
// references through the $objects pool.
package keyedarchive
