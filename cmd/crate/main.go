// Command crate inspects and maintains a record store from the shell.
//
// Usage:
//
//	crate [-config file] [-root dir] <command> [args]
//
// Commands:
//
//	kinds                 list kind directories
//	ls <kind> [glob]      list identifiers, optionally filtered
//	path <kind> <id>      print the resolved record path
//	show <kind> <id>      print a record as YAML
//	rm <kind> <id>        delete a record
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aigotowork/crate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("crate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	root := fs.String("root", "", "storage root (overrides config and CRATE_ROOT)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: crate [-config file] [-root dir] <kinds|ls|path|show|rm> [args]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := crate.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *root != "" {
		if err := cfg.SetRoot(*root); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	store, err := crate.NewFromConfig(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := dispatch(store, cmd, rest, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func usage(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func dispatch(store crate.Store, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "kinds":
		kinds, err := store.Kinds()
		if err != nil {
			return err
		}
		for _, k := range kinds {
			fmt.Fprintln(out, k)
		}
		return nil

	case "ls":
		if len(args) < 1 || len(args) > 2 {
			return usage("ls <kind> [glob]")
		}
		kind := crate.Kind(args[0])
		var ids []string
		var err error
		if len(args) == 2 {
			ids, err = store.Match(kind, args[1])
		} else {
			ids, err = store.List(kind)
		}
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil

	case "path":
		if len(args) != 2 {
			return usage("path <kind> <id>")
		}
		path, err := store.LocationFor(crate.Kind(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, path)
		return nil

	case "show":
		if len(args) != 2 {
			return usage("show <kind> <id>")
		}
		raw, err := store.Inspect(crate.Kind(args[0]), args[1])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(raw); err != nil {
			return err
		}
		return enc.Close()

	case "rm":
		if len(args) != 2 {
			return usage("rm <kind> <id>")
		}
		removed, err := store.Delete(crate.Kind(args[0]), args[1])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%s/%s: %w", args[0], args[1], crate.ErrNotFound)
		}
		return nil

	default:
		return usage("unknown command %q", cmd)
	}
}
