// Command plistutils decodes an Apple Alias or Bookmark blob read from a
// file's data fork and prints the resulting records as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	plistutils "github.com/strozfriedberg/plistutils"
	"github.com/sirupsen/logrus"
)

var (
	flagPath    = flag.String("path", "", "path of the file to decode")
	flagIndex   = flag.Int("index", 0, "index to record against each decoded entry")
	flagVerbose = flag.Bool("v", false, "log at debug level")
)

func main() {
	flag.Parse()
	if *flagPath == "" {
		fmt.Fprintln(os.Stderr, "usage: plistutils -path=<file>")
		os.Exit(1)
	}

	log := logrus.New()
	if *flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if alias, err := plistutils.IsFinderAlias(*flagPath); err == nil && alias {
		log.Debugf("%s: Finder alias bit is set", *flagPath)
	}
	if bt, ok := plistutils.BirthTime(*flagPath); ok {
		log.Debugf("%s: filesystem birth time %s", *flagPath, bt)
	}

	blob, err := os.ReadFile(*flagPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", *flagPath, err)
		os.Exit(1)
	}

	result := plistutils.DecodeBlob(*flagPath, *flagIndex, *flagPath, blob, plistutils.Limits{}, log)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
