// Tetherctl - inspection tooling for tether handle values and
// registry snapshots.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/tether/handle"
	"github.com/chazu/tether/uid"
)

func main() {
	parseArg := flag.String("parse", "", "Parse a handle string and print its parts")
	snapshotArg := flag.String("snapshot", "", "List the entries of a CBOR registry snapshot file")
	uuidArg := flag.Bool("uuid", false, "Generate a UUID")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tetherctl [options]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects tether handle values and registry snapshots.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tetherctl -parse '0x7f3a1000^AVFrame'  # Split a handle into address and tag\n")
		fmt.Fprintf(os.Stderr, "  tetherctl -snapshot registry.cbor      # List a snapshot's entries\n")
		fmt.Fprintf(os.Stderr, "  tetherctl -uuid                        # Generate a UUID\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	switch {
	case *parseArg != "":
		if err := runParse(*parseArg); err != nil {
			fail(err)
		}
	case *snapshotArg != "":
		if err := runSnapshot(*snapshotArg); err != nil {
			fail(err)
		}
	case *uuidArg:
		fmt.Println(uid.Format(uid.New()))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runParse(s string) error {
	h, err := handle.Parse(s)
	if err != nil {
		return err
	}
	fmt.Printf("address: %#x\n", uint64(h.Addr()))
	if h.Tag().IsNone() {
		fmt.Println("tag:     (none)")
	} else {
		fmt.Printf("tag:     %s\n", h.Tag())
	}
	return nil
}

func runSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := handle.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	fmt.Printf("registry %s: %d entries, %d subtag edges\n",
		s.Registry, len(s.Entries), len(s.Subtags))
	for _, e := range s.Entries {
		h := handle.Wrap(uintptr(e.Addr), handle.Tag(e.Tag))
		if e.Mode == "counted" {
			fmt.Printf("  %-30s %s x%d\n", h, e.Mode, e.Count)
		} else {
			fmt.Printf("  %-30s %s\n", h, e.Mode)
		}
	}
	for _, edge := range s.Subtags {
		fmt.Printf("  subtag %s -> %s\n", edge.Sub, edge.Super)
	}
	return nil
}
