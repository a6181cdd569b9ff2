package keyedarchive

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/strozfriedberg/plistutils/plist"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// capturingLogger counts Errorf calls so cycle-detection tests can assert a
// failure was reported without depending on exact wording.
type capturingLogger struct {
	errors int
}

func (c *capturingLogger) Debugf(string, ...interface{}) {}
func (c *capturingLogger) Warnf(string, ...interface{})  {}
func (c *capturingLogger) Errorf(string, ...interface{}) { c.errors++ }

func baseArchive(objects []any, top plist.Dict) plist.Dict {
	return plist.Dict{
		"$archiver": "NSKeyedArchiver",
		"$version":  int64(100000),
		"$top":      top,
		"$objects":  objects,
	}
}

func TestParseResolvesNSString(t *testing.T) {
	objects := []any{
		"$null",
		nil,
		nil,
		plist.Dict{"$class": plist.UID(4), "NS.string": "hello"},
		plist.Dict{"$classname": "NSString"},
	}
	tree := baseArchive(objects, plist.Dict{"root": plist.UID(3)})

	got := Parse(tree, Limits{}, silentLogger())
	if got == nil {
		t.Fatal("expected non-nil result")
	}
	if got["root"] != "hello" {
		t.Fatalf("got root %#v, want %q", got["root"], "hello")
	}
}

func TestParseSelfReferentialCycle(t *testing.T) {
	objects := []any{
		nil,
		plist.Dict{"$class": plist.UID(2), "NS.objects": []any{plist.UID(1)}},
		plist.Dict{"$classname": "NSArray"},
	}
	tree := baseArchive(objects, plist.Dict{"root": plist.UID(1)})

	log := &capturingLogger{}
	got := Parse(tree, Limits{}, log)
	if got == nil {
		t.Fatal("expected non-nil result even with a cycle")
	}
	root, present := got["root"]
	if !present {
		t.Fatalf("expected the cyclic key to be present in %#v", got)
	}
	if root != nil {
		t.Fatalf("expected the cyclic key to resolve to nil, got %#v", root)
	}
	if log.errors == 0 {
		t.Fatal("expected a cycle error to be logged")
	}
}

func TestParseNotAKeyedArchive(t *testing.T) {
	tree := plist.Dict{"$archiver": "SomethingElse"}
	if got := Parse(tree, Limits{}, silentLogger()); got != nil {
		t.Fatalf("expected nil for a non-keyed-archive tree, got %#v", got)
	}
}

func TestParseNSDictionary(t *testing.T) {
	objects := []any{
		nil,
		plist.Dict{
			"$class":     plist.UID(4),
			"NS.keys":    []any{"k1"},
			"NS.objects": []any{"v1"},
		},
		nil,
		nil,
		plist.Dict{"$classname": "NSDictionary"},
	}
	tree := baseArchive(objects, plist.Dict{"root": plist.UID(1)})

	got := Parse(tree, Limits{}, silentLogger())
	inner, ok := got["root"].(plist.Dict)
	if !ok {
		t.Fatalf("got root %#v, want plist.Dict", got["root"])
	}
	if inner["k1"] != "v1" {
		t.Fatalf("got %#v, want k1=v1", inner)
	}
}

func TestParseNSURLJoinsBaseAndRelative(t *testing.T) {
	objects := []any{
		nil,
		plist.Dict{"$class": plist.UID(2), "NS.base": "https://example.com", "NS.relative": "path"},
		plist.Dict{"$classname": "NSURL"},
	}
	tree := baseArchive(objects, plist.Dict{"root": plist.UID(1)})

	got := Parse(tree, Limits{}, silentLogger())
	want := "https://example.com/path"
	if got["root"] != want {
		t.Fatalf("got %#v, want %q", got["root"], want)
	}
}

func TestParseUnknownClassReturnsRawMapping(t *testing.T) {
	objects := []any{
		nil,
		plist.Dict{"$class": plist.UID(2), "Foo": "bar"},
		plist.Dict{"$classname": "NSSomethingWeird"},
	}
	tree := baseArchive(objects, plist.Dict{"root": plist.UID(1)})

	got := Parse(tree, Limits{}, silentLogger())
	inner, ok := got["root"].(plist.Dict)
	if !ok {
		t.Fatalf("got root %#v, want raw plist.Dict", got["root"])
	}
	if inner["Foo"] != "bar" {
		t.Fatalf("got %#v", inner)
	}
}

func TestParseTopValueWithoutUIDPassesThrough(t *testing.T) {
	objects := []any{nil}
	tree := baseArchive(objects, plist.Dict{"flag": true})

	got := Parse(tree, Limits{}, silentLogger())
	if got["flag"] != true {
		t.Fatalf("got %#v, want true", got["flag"])
	}
}
