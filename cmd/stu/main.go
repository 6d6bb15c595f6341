// Command stu reads a Stufile, parses it, and prints the resulting rule
// list. It exercises the dependency-algebra/parser package end to end;
// the actual build executor is out of scope for this module.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/dduenker/stu"
)

//go:embed glossary.md
var glossary string

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("stu", flag.ContinueOnError)
	file := fs.String("f", "Stufile", "path to the Stufile to parse")
	nonoptional := fs.Bool("nonoptional", false, "strip the optional flag from '?' dependencies")
	nontrivial := fs.Bool("nontrivial", false, "strip the trivial flag from '&' dependencies")
	showGlossary := fs.Bool("glossary", false, "print the flag/grammar glossary and exit")
	if err := fs.Parse(args); err != nil {
		return stu.ExitLogical
	}

	if *showGlossary {
		fmt.Print(glossary)
		return stu.ExitSuccess
	}

	src, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stu: %v\n", err)
		return stu.ExitLogical
	}

	tokens, end, err := stu.Tokenize(*file, string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "stu: %v\n", err)
		return exitCodeFor(err)
	}

	rules, err := stu.ParseRuleList(tokens, end, stu.ParseOptions{
		NonOptional: *nonoptional,
		NonTrivial:  *nontrivial,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "stu: %v\n", err)
		return exitCodeFor(err)
	}

	for _, r := range rules {
		printRule(r)
	}
	return stu.ExitSuccess
}

func printRule(r *stu.Rule) {
	for i, t := range r.Targets {
		if i > 0 {
			fmt.Print(" ")
		}
		if i == r.OutputIndex {
			fmt.Print(">")
		}
		fmt.Print(t.FormatWord())
	}
	if len(r.Deps) > 0 || r.InputFilename != nil {
		fmt.Print(":")
		if r.InputFilename != nil {
			fmt.Print(" < ", r.InputFilename.Name.Format())
		}
		for _, d := range r.Deps {
			fmt.Print(" ", d.FormatOut())
		}
	}
	switch r.Kind {
	case stu.ProdCommand:
		fmt.Printf(" { %s }\n", r.Command)
	case stu.ProdHardcode:
		fmt.Printf(" '%s'\n", r.Content)
	case stu.ProdCopy:
		fmt.Printf(" = %s;\n", r.CopySource.Name.Format())
	default:
		fmt.Println(";")
	}
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *stu.FatalError:
		return stu.ExitFatal
	default:
		return stu.ExitLogical
	}
}
