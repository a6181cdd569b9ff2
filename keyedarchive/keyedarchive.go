package keyedarchive

import (
	"strings"

	"github.com/strozfriedberg/plistutils/internal/codec"
	"github.com/strozfriedberg/plistutils/plist"
)

// IsKeyedArchive reports whether tree looks like an NSKeyedArchiver graph
// this package can walk: a recognized $archiver and the one $version this
// format has ever shipped.
func IsKeyedArchive(tree plist.Dict) bool {
	if tree == nil {
		return false
	}
	archiver, ok := tree.String("$archiver")
	if !ok || !knownArchivers[archiver] {
		return false
	}
	version, ok := asInt64(tree["$version"])
	return ok && version == knownArchiveVersion
}

// Parse resolves $top against $objects, returning one entry per $top key.
// A $top value that isn't a UID reference (rare, but the format allows it)
// passes through unchanged. A key whose resolution runs into a cycle is
// logged and comes back nil rather than aborting the whole archive.
// Exceeding the depth limit is logged as well, but only the part nested too
// deeply is replaced by nil; the rest of that key's value is kept.
func Parse(tree plist.Dict, limits Limits, log codec.Logger) plist.Dict {
	return parseAtDepth(tree, limits, codec.OrDefault(log), 0)
}

// parseAtDepth does the work of Parse, but starts counting recursion depth
// from depth rather than zero. NSData's nested-archive case re-enters here
// (never the public Parse) so a chain of archives embedded in one another
// can't reset the depth guard and defeat it.
func parseAtDepth(tree plist.Dict, limits Limits, log codec.Logger, depth int) plist.Dict {
	if depth > limits.depthCap() {
		log.Errorf("keyedarchive: max depth %d exceeded", limits.depthCap())
		return nil
	}
	if !IsKeyedArchive(tree) {
		archiver, _ := tree.String("$archiver")
		version, _ := asInt64(tree["$version"])
		log.Errorf("%v", newUnknownArchiverError(archiver, version))
		return nil
	}
	objects, ok := tree.Slice("$objects")
	if !ok {
		log.Errorf("keyedarchive: missing $objects")
		return nil
	}
	top, ok := tree["$top"].(plist.Dict)
	if !ok {
		log.Errorf("keyedarchive: missing or malformed $top")
		return nil
	}

	result := make(plist.Dict, len(top))
	for name, val := range top {
		uid, isUID := val.(plist.UID)
		if !isUID {
			result[name] = val
			continue
		}
		path := map[int]bool{}
		resolved, err := processUID(uid, objects, path, depth, limits, log)
		if err != nil {
			log.Errorf("keyedarchive: resolving $top[%q]: %v", name, err)
			result[name] = nil
			continue
		}
		if path[cycleMarker] {
			// The cycle was logged where it was found, deeper in the graph.
			result[name] = nil
			continue
		}
		result[name] = resolved
	}
	return result
}

// cycleMarker is a path key no $objects index can take. processObj sets it
// when a UID back-reference closes a cycle, so parseAtDepth can return nil
// for the whole $top entry being resolved.
const cycleMarker = -1

func processUID(u plist.UID, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) (any, error) {
	idx := int(u)
	if idx < 0 || idx >= len(objects) {
		log.Errorf("keyedarchive: uid %d out of range (pool size %d)", idx, len(objects))
		return nil, nil
	}
	if path[idx] {
		return nil, newCycleError(idx)
	}
	path[idx] = true
	defer delete(path, idx)
	return processObj(objects[idx], objects, path, depth+1, limits, log), nil
}

// processObj mirrors the teacher's recursive-descent decoders: dispatch on
// dynamic type, recursing into compound shapes and leaving scalars alone.
func processObj(obj any, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	if depth > limits.depthCap() {
		log.Errorf("keyedarchive: max depth %d exceeded", limits.depthCap())
		return nil
	}
	switch v := obj.(type) {
	case plist.UID:
		resolved, err := processUID(v, objects, path, depth, limits, log)
		if err != nil {
			log.Errorf("keyedarchive: %v", err)
			path[cycleMarker] = true
			return nil
		}
		return resolved
	case plist.Dict:
		return processDict(v, objects, path, depth, limits, log)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = processObj(e, objects, path, depth+1, limits, log)
		}
		return out
	case string:
		if v == "$null" {
			return nil
		}
		return v
	case nil, bool, int64, uint64, float64, []byte:
		return v
	default:
		log.Warnf("keyedarchive: unexpected value type %T, please report", obj)
		return v
	}
}

func processDict(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	classUID, ok := d.UIDValue("$class")
	if !ok {
		out := make(plist.Dict, len(d))
		for k, v := range d {
			out[k] = processObj(v, objects, path, depth+1, limits, log)
		}
		return out
	}
	name := resolveClassName(classUID, objects, log)
	proc, ok := processors[name]
	if !ok {
		log.Warnf("keyedarchive: unrecognized class %q, returning raw mapping", name)
		return d
	}
	return proc(d, objects, path, depth, limits, log)
}

func resolveClassName(u plist.UID, objects []any, log codec.Logger) string {
	idx := int(u)
	if idx < 0 || idx >= len(objects) {
		log.Errorf("keyedarchive: $class uid %d out of range (pool size %d)", idx, len(objects))
		return ""
	}
	cd, ok := objects[idx].(plist.Dict)
	if !ok {
		return ""
	}
	name, _ := cd.String("$classname")
	return name
}

type processorFunc func(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any

var processors = map[string]processorFunc{
	"NSArray":                    processSequence,
	"NSMutableArray":             processSequence,
	"NSSet":                      processSequence,
	"NSMutableSet":               processSequence,
	"NSAttributedString":         processAttributedString,
	"NSMutableAttributedString":  processAttributedString,
	"NSData":                     processData,
	"NSMutableData":              processData,
	"NSDate":                     processDate,
	"NSDictionary":               processDictionary,
	"NSMutableDictionary":        processDictionary,
	"NSMutableString":            processString,
	"NSString":                   processString,
	"NSNull":                     processNull,
	"NSURL":                      processURL,
	"NSUUID":                     processUUID,
	"NSValue":                    processValue,
	"SFLListItem":                processListItem, // TODO 'properties' field is an NSDictionary, not yet surfaced
}

func processDictionary(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	keys, hasKeys := d.Slice("NS.keys")
	vals, hasVals := d.Slice("NS.objects")
	if !hasKeys || !hasVals {
		return d
	}
	out := make(plist.Dict, len(keys))
	n := len(keys)
	if len(vals) < n {
		n = len(vals)
	}
	for i := 0; i < n; i++ {
		k := processObj(keys[i], objects, path, depth+1, limits, log)
		ks, ok := k.(string)
		if !ok {
			log.Warnf("keyedarchive: NSDictionary key at index %d is not a string, skipping", i)
			continue
		}
		out[ks] = processObj(vals[i], objects, path, depth+1, limits, log)
	}
	return out
}

func processSequence(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	members, _ := d.Slice("NS.objects")
	out := make([]any, len(members))
	for i, m := range members {
		out[i] = processObj(m, objects, path, depth+1, limits, log)
	}
	return out
}

func processString(d plist.Dict, _ []any, _ map[int]bool, _ int, _ Limits, _ codec.Logger) any {
	return d["NS.string"]
}

func processData(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	data, ok := d["NS.data"]
	if !ok {
		return nil
	}
	if nested, ok := data.(plist.Dict); ok && IsKeyedArchive(nested) {
		return parseAtDepth(nested, limits, log, depth+1)
	}
	return data
}

func processNull(_ plist.Dict, _ []any, _ map[int]bool, _ int, _ Limits, _ codec.Logger) any {
	return nil
}

func processDate(d plist.Dict, _ []any, _ map[int]bool, _ int, _ Limits, _ codec.Logger) any {
	secs, ok := asFloat64(d["NS.time"])
	if !ok {
		return nil
	}
	return codec.ParseMacAbsoluteTime(secs)
}

func processURL(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	base, _ := processObj(d["NS.base"], objects, path, depth+1, limits, log).(string)
	relative, _ := processObj(d["NS.relative"], objects, path, depth+1, limits, log).(string)
	var parts []string
	if base != "" {
		parts = append(parts, base)
	}
	if relative != "" {
		parts = append(parts, relative)
	}
	return strings.Join(parts, "/")
}

func processUUID(d plist.Dict, _ []any, _ map[int]bool, _ int, _ Limits, log codec.Logger) any {
	b, ok := d.Bytes("NS.uuidbytes")
	if !ok || len(b) != 16 {
		return b
	}
	u, err := codec.UUIDFromBytesBE(b)
	if err != nil {
		log.Errorf("keyedarchive: NS.uuidbytes: %v", err)
		return b
	}
	return u.String()
}

func processAttributedString(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	return processObj(d["NSString"], objects, path, depth+1, limits, log)
}

// nsValueSpecialTypes maps NS.special codes to the processor for that
// NSSpecialValue shape. Only NSRange (4) has ever been observed in the
// wild; NSPoint/NSSize/NSRect/NSEdgeInsets need samples before they're
// worth adding.
var nsValueSpecialTypes = map[int64]processorFunc{
	4: processRange,
}

func processValue(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	special, ok := asInt64(d["NS.special"])
	if !ok || special == 0 {
		log.Errorf("keyedarchive: unsupported NSConcreteValue, please report")
		return nil
	}
	proc, ok := nsValueSpecialTypes[special]
	if !ok {
		log.Errorf("keyedarchive: unsupported NSValue special type %d, please report", special)
		return nil
	}
	return proc(d, objects, path, depth, limits, log)
}

func processRange(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	return plist.Dict{
		"length":   processObj(d["NS.rangeval.length"], objects, path, depth+1, limits, log),
		"location": processObj(d["NS.rangeval.location"], objects, path, depth+1, limits, log),
	}
}

func processListItem(d plist.Dict, objects []any, path map[int]bool, depth int, limits Limits, log codec.Logger) any {
	return plist.Dict{
		"url":      processObj(d["URL"], objects, path, depth+1, limits, log),
		"bookmark": processObj(d["bookmark"], objects, path, depth+1, limits, log),
		"name":     processObj(d["name"], objects, path, depth+1, limits, log),
		"order":    processObj(d["order"], objects, path, depth+1, limits, log),
		"uuid":     processObj(d["uniqueIdentifier"], objects, path, depth+1, limits, log),
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
