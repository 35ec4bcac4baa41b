package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lexgen/codec"
	"lexgen/lookup"
	"lexgen/ruledef"
	"lexgen/rules"
)

func main() {
	start := flag.String("start", rules.Initial, "name of the start-state to begin scanning in")
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("usage: %s [-start NAME] <rules file> <input file>", os.Args[0])
	}

	ruleFile, err := os.Open(args[0])
	if err != nil {
		log.Fatal(err)
	}
	defer ruleFile.Close()

	r, err := ruledef.Load(ruleFile)
	if err != nil {
		log.Fatal(err)
	}
	m, err := r.Build()
	if err != nil {
		log.Fatal(err)
	}

	startID := m.StartStateID(*start)
	if startID < 0 {
		log.Fatalf("no such start-state %q", *start)
	}

	input, err := os.ReadFile(args[1])
	if err != nil {
		log.Fatal(err)
	}

	cur := lookup.NewCursor(m, codec.UTF8Decoder{Data: input}, startID, true)
	it, err := lookup.NewIterator(cur)
	if err != nil {
		log.Fatal(err)
	}
	for !it.Done() {
		res := it.Value()
		fmt.Printf("%d\t%q\t[%d:%d]\n", res.ID, input[res.First:res.Second], res.First, res.Second)
		if err := it.Advance(); err != nil {
			log.Fatal(err)
		}
	}
}
