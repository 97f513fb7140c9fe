package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kr/pretty"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/term"

	scaleencode "github.com/wippyai/scale-encode"
	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/scaletype"
)

type options struct {
	registry  string
	wit       string
	typeName  string
	value     string
	valueFile string
	format    string
	out       string
	dump      bool
	verbose   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.registry, "registry", "", "Path to a YAML type registry")
	flag.StringVar(&opts.wit, "wit", "", "Path to a WIT JSON resolve to import")
	flag.StringVar(&opts.typeName, "type", "", "Target type: registry name or #id")
	flag.StringVar(&opts.value, "value", "", "Value document")
	flag.StringVar(&opts.valueFile, "value-file", "", "Read the value document from a file (- for stdin)")
	flag.StringVar(&opts.format, "format", "yaml", "Value document format: yaml, json or cbor")
	flag.StringVar(&opts.out, "out", "hex", "Output encoding: hex or raw")
	flag.BoolVar(&opts.dump, "dump", false, "Print the resolved target type tree to stderr")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	interactive := flag.Bool("i", false, "Interactive mode with TUI")
	flag.Parse()

	if opts.registry == "" && opts.wit == "" {
		fmt.Fprintln(os.Stderr, "Usage: scalenc -registry <types.yaml> -type <name> -value <doc>")
		fmt.Fprintln(os.Stderr, "       scalenc -wit <resolve.json> -type <name> -value-file <doc.yaml>")
		fmt.Fprintln(os.Stderr, "       scalenc -registry <types.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			scaleencode.SetLogger(logger)
			defer logger.Sync() //nolint:errcheck
		}
	}

	reg, err := loadTypes(opts.registry, opts.wit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(reg, opts.format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(reg, opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(reg *scaletype.Registry, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	id, err := lookupType(reg, opts.typeName)
	if err != nil {
		return err
	}

	if opts.dump {
		pretty.Fprintf(stderr, "%# v\n", typeTree(reg, id))
	}

	doc, err := readDocument(opts, stdin)
	if err != nil {
		return err
	}
	value, err := parseDocument(doc, opts.format)
	if err != nil {
		return err
	}

	out, err := scaleencode.Encode(value, id, reg)
	if err != nil {
		return err
	}

	switch opts.out {
	case "hex":
		fmt.Fprintln(stdout, hex.EncodeToString(out))
	case "raw":
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("refusing to write raw bytes to a terminal, use -out hex")
		}
		_, err = stdout.Write(out)
	default:
		return fmt.Errorf("unknown output encoding %q", opts.out)
	}
	return err
}

// loadTypes builds the registry from a YAML document, a WIT resolve, or both.
func loadTypes(registryPath, witPath string) (*scaletype.Registry, error) {
	reg := scaletype.NewRegistry()
	if registryPath != "" {
		loaded, err := scaletype.LoadYAMLFile(registryPath)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}

	if witPath != "" {
		f, err := os.Open(witPath)
		if err != nil {
			return nil, fmt.Errorf("open wit: %w", err)
		}
		defer f.Close()

		skipped, err := scaletype.NewImporter(reg).ImportJSON(f)
		if err != nil {
			return nil, err
		}
		for _, name := range skipped {
			scaleencode.Logger().Warn("skipped WIT type", zap.String("name", name))
		}
	}
	return reg, nil
}

func readDocument(opts options, stdin io.Reader) ([]byte, error) {
	switch {
	case opts.valueFile == "-":
		return io.ReadAll(stdin)
	case opts.valueFile != "":
		data, err := os.ReadFile(opts.valueFile)
		if err != nil {
			return nil, fmt.Errorf("read value: %w", err)
		}
		return data, nil
	case opts.value != "":
		return []byte(opts.value), nil
	default:
		return nil, fmt.Errorf("no value given, use -value or -value-file")
	}
}

// lookupType accepts a registry name or "#id".
func lookupType(reg *scaletype.Registry, name string) (scaletype.ID, error) {
	if name == "" {
		return 0, fmt.Errorf("no target type given, use -type")
	}
	if rest, ok := strings.CutPrefix(name, "#"); ok {
		n, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return 0, errors.ParseFailed("type id "+name, err)
		}
		if _, err := reg.Resolve(scaletype.ID(n)); err != nil {
			return 0, errors.TypeNotFound(n)
		}
		return scaletype.ID(n), nil
	}
	if id, ok := reg.Lookup(name); ok {
		return id, nil
	}

	e := errors.NotFound(errors.PhaseResolve, "type", name)
	if closest := closestName(name, reg.Names()); closest != "" {
		e.Detail += fmt.Sprintf(", did you mean %q?", closest)
	}
	return 0, e
}

// closestName returns the candidate with the smallest edit distance to name,
// ignoring candidates that would need to be rewritten completely.
func closestName(name string, candidates []string) string {
	sort.Strings(candidates)
	nameRunes := []rune(name)
	closest, closestDistance := "", len(name)
	for _, c := range candidates {
		d := levenshtein.DistanceForStrings(nameRunes, []rune(c), levenshtein.DefaultOptions)
		if d < closestDistance && d < len(c) {
			closest, closestDistance = c, d
		}
	}
	return closest
}

// typeNode is the dump form of a type and everything it refers to.
type typeNode struct {
	ID       scaletype.ID
	Type     string
	Children []typeNode
}

func typeTree(reg *scaletype.Registry, id scaletype.ID) typeNode {
	return buildTree(reg, id, map[scaletype.ID]bool{})
}

func buildTree(reg *scaletype.Registry, id scaletype.ID, seen map[scaletype.ID]bool) typeNode {
	t, err := reg.Resolve(id)
	if err != nil {
		return typeNode{ID: id, Type: "<missing>"}
	}
	node := typeNode{ID: id, Type: t.String()}
	if seen[id] {
		return node
	}
	seen[id] = true

	var refs []scaletype.ID
	switch t.Kind {
	case scaletype.KindCompact, scaletype.KindArray, scaletype.KindSequence:
		refs = append(refs, t.Elem)
	case scaletype.KindTuple:
		refs = append(refs, t.Members...)
	case scaletype.KindComposite:
		for _, f := range t.Fields {
			refs = append(refs, f.Type)
		}
	case scaletype.KindVariant:
		for _, v := range t.Variants {
			for _, f := range v.Fields {
				refs = append(refs, f.Type)
			}
		}
	}
	for _, r := range refs {
		node.Children = append(node.Children, buildTree(reg, r, seen))
	}
	return node
}
