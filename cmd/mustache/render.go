package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/runZeroInc/mustache/v2"
)

// dataArg is a repeatable --data/--data-file flag value. Both flags
// append into the same ordered slice (via two dataArg instances sharing
// the *entries pointer) so that merge order tracks the order the user
// actually passed the flags on the command line, per SPEC_FULL.md §6.B,
// rather than grouping all --data before all --data-file.
type dataArg struct {
	entries  *[]dataEntry
	fromFile bool
}

type dataEntry struct {
	literal  string
	fromFile bool
}

func (d *dataArg) String() string { return "" }
func (d *dataArg) Type() string   { return "stringArray" }
func (d *dataArg) Set(v string) error {
	*d.entries = append(*d.entries, dataEntry{literal: v, fromFile: d.fromFile})
	return nil
}

func newRenderCmd() *cobra.Command {
	var entries []dataEntry
	var partialDicts []string
	var partialLiterals []string
	var outPath string

	cmd := &cobra.Command{
		Use:   `render <template-path-or-"-">`,
		Short: "Render a Mustache template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(entries) == 0 {
				return fmt.Errorf("render: at least one of --data/--data-file is required")
			}

			data, err := loadData(entries)
			if err != nil {
				return err
			}

			partials, err := loadPartials(partialDicts, partialLiterals)
			if err != nil {
				return err
			}

			tmplSrc, err := readSource(args[0])
			if err != nil {
				return fmt.Errorf("render: reading template: %w", err)
			}

			c := mustache.New()
			if len(partials) > 0 {
				c = c.WithPartials(mustache.StaticProvider{Partials: partials})
			}
			tmpl, err := c.CompileString(tmplSrc)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			out, err := tmpl.Render(data)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
					return fmt.Errorf("render: writing output: %w", err)
				}
				return nil
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	flags := cmd.Flags()
	flags.VarP(&dataArg{entries: &entries, fromFile: false}, "data", "d", "a YAML/JSON data literal, shallow-merged into the root mapping (repeatable)")
	flags.VarP(&dataArg{entries: &entries, fromFile: true}, "data-file", "f", `a file (or "-" for stdin) holding YAML/JSON data, merged like --data (repeatable)`)
	flags.StringArrayVarP(&partialDicts, "partials", "p", nil, "a YAML file mapping partial name to a template file path (repeatable)")
	flags.StringArrayVarP(&partialLiterals, "partial-file", "r", nil, "a YAML mapping literal from partial name directly to body text, applied after --partials (repeatable)")
	flags.StringVarP(&outPath, "out", "o", "", "write rendered output to this path instead of stdout")

	return cmd
}

// loadData reads and YAML/JSON-parses every --data/--data-file entry in
// command-line order, shallow-merging each into an accumulator mapping
// so that a later flag's keys win on conflict.
func loadData(entries []dataEntry) (mustache.Value, error) {
	acc := mustache.Null
	for _, e := range entries {
		literal := e.literal
		if e.fromFile {
			content, err := readSource(e.literal)
			if err != nil {
				return mustache.Null, fmt.Errorf("render: reading --data-file %s: %w", e.literal, err)
			}
			literal = content
		}
		val, err := mustache.LoadValue(literal)
		if err != nil {
			return mustache.Null, fmt.Errorf("render: parsing data: %w", err)
		}
		acc = mustache.MergeMapping(acc, val)
	}
	return acc, nil
}

// loadPartials resolves --partials (file-of-paths) entries first, then
// --partial-file (inline-literal) entries, so the latter overrides the
// former on a name collision.
func loadPartials(dictPaths, literals []string) (map[string]string, error) {
	partials := map[string]string{}

	for _, path := range dictPaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("render: reading --partials %s: %w", path, err)
		}
		var dict map[string]string
		if err := yaml.Unmarshal(content, &dict); err != nil {
			return nil, fmt.Errorf("render: parsing --partials %s: %w", path, err)
		}
		for name, filePath := range dict {
			body, err := os.ReadFile(filePath)
			if err != nil {
				log.Printf("render: partial %q: could not read %s: %v", name, filePath, err)
				return nil, fmt.Errorf("render: partial %q: %w", name, err)
			}
			partials[name] = string(body)
		}
	}

	for _, literal := range literals {
		var dict map[string]string
		if err := yaml.Unmarshal([]byte(literal), &dict); err != nil {
			return nil, fmt.Errorf("render: parsing --partial-file literal: %w", err)
		}
		for name, body := range dict {
			partials[name] = body
		}
	}

	return partials, nil
}

// readSource reads path's contents, treating "-" as stdin.
func readSource(path string) (string, error) {
	if path == "-" {
		log.Printf("render: reading from stdin")
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
