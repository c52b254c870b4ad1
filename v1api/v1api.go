// Package v1api is a best-effort attempt to implement the old v1 API
// (arbitrary struct/map data via reflection) on top of the v2 Value-based
// API.
package v1api

import (
	"fmt"
	"os"
	"path"
	"reflect"

	mustache "github.com/runZeroInc/mustache/v2"
)

// fromGo converts an arbitrary Go value — the kind of thing the old v1
// API accepted directly as render data — into a mustache.Value, via
// reflection. Unexported struct fields are skipped, matching the old
// API's use of reflect.Value.FieldByName (which never reached them
// either).
func fromGo(v interface{}) mustache.Value {
	if v == nil {
		return mustache.Null
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) mustache.Value {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return mustache.Null
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return mustache.NewBool(rv.Bool())
	case reflect.String:
		return mustache.NewString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return mustache.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return mustache.NewInt(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return mustache.NewFloat(rv.Float())
	case reflect.Slice, reflect.Array:
		seq := make([]mustache.Value, rv.Len())
		for i := range seq {
			seq[i] = fromReflect(rv.Index(i))
		}
		return mustache.NewSequence(seq)
	case reflect.Map:
		m := make(map[string]mustache.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = fromReflect(iter.Value())
		}
		return mustache.NewMapping(m)
	case reflect.Struct:
		m := make(map[string]mustache.Value)
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			m[f.Name] = fromReflect(rv.Field(i))
		}
		return mustache.NewMapping(m)
	default:
		return mustache.NewString(fmt.Sprint(rv.Interface()))
	}
}

// mergeContext flattens the old API's variadic context list into a
// single mapping, later entries overriding earlier ones on key
// conflict, so the last argument takes precedence.
func mergeContext(context []interface{}) mustache.Value {
	merged := mustache.NewMapping(map[string]mustache.Value{})
	for _, c := range context {
		merged = mustache.MergeMapping(merged, fromGo(c))
	}
	return merged
}

// ParseString compiles a mustache template string. The resulting output can
// be used to efficiently render the template multiple times with different data
// sources.
func ParseString(data string) (*mustache.Template, error) {
	return ParseStringRaw(data, false)
}

// ParseStringRaw compiles a mustache template string. The resulting output can
// be used to efficiently render the template multiple times with different data
// sources.
func ParseStringRaw(data string, forceRaw bool) (*mustache.Template, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	partials := mustache.FileProvider{
		Paths: []string{cwd},
	}

	return ParseStringPartialsRaw(data, partials, forceRaw)
}

// ParseStringPartials compiles a mustache template string, retrieving any
// required partials from the given provider. The resulting output can be used
// to efficiently render the template multiple times with different data
// sources.
func ParseStringPartials(data string, partials mustache.PartialProvider) (*mustache.Template, error) {
	return ParseStringPartialsRaw(data, partials, false)
}

// ParseStringPartialsRaw compiles a mustache template string, retrieving any
// required partials from the given provider. The resulting output can be used
// to efficiently render the template multiple times with different data
// sources.
func ParseStringPartialsRaw(data string, partials mustache.PartialProvider, forceRaw bool) (*mustache.Template, error) {
	escapeMode := mustache.EscapeHTML
	if forceRaw {
		escapeMode = mustache.EscapeRaw
	}
	return mustache.New().WithPartials(partials).WithEscapeMode(escapeMode).CompileString(data)
}

// ParseFile loads a mustache template string from a file and compiles it. The
// resulting output can be used to efficiently render the template multiple
// times with different data sources.
func ParseFile(filename string) (*mustache.Template, error) {
	dirname, _ := path.Split(filename)
	partials := mustache.FileProvider{
		Paths: []string{dirname},
	}

	return ParseFilePartials(filename, partials)
}

// ParseFilePartials loads a mustache template string from a file, retrieving any
// required partials from the given provider, and compiles it. The resulting
// output can be used to efficiently render the template multiple times with
// different data sources.
func ParseFilePartials(filename string, partials mustache.PartialProvider) (*mustache.Template, error) {
	return ParseFilePartialsRaw(filename, false, partials)
}

// ParseFilePartialsRaw loads a mustache template string from a file, retrieving
// any required partials from the given provider, and compiles it. The resulting
// output can be used to efficiently render the template multiple times with
// different data sources.
func ParseFilePartialsRaw(filename string, forceRaw bool, partials mustache.PartialProvider) (*mustache.Template, error) {
	escapeMode := mustache.EscapeHTML
	if forceRaw {
		escapeMode = mustache.EscapeRaw
	}
	return mustache.New().WithPartials(partials).WithEscapeMode(escapeMode).CompileFile(filename)
}

// Render compiles a mustache template string and uses the given data source
// - generally a map or struct - to render the template and return the output.
func Render(data string, context ...interface{}) (string, error) {
	return RenderRaw(data, false, context...)
}

// RenderRaw compiles a mustache template string and uses the given data
// source - generally a map or struct - to render the template and return the
// output.
func RenderRaw(data string, forceRaw bool, context ...interface{}) (string, error) {
	return RenderPartialsRaw(data, nil, forceRaw, context...)
}

// RenderPartials compiles a mustache template string and uses the given partial
// provider and data source - generally a map or struct - to render the template
// and return the output.
func RenderPartials(data string, partials mustache.PartialProvider, context ...interface{}) (string, error) {
	return RenderPartialsRaw(data, partials, false, context...)
}

// RenderPartialsRaw compiles a mustache template string and uses the given
// partial provider and data source - generally a map or struct - to render the
// template and return the output.
func RenderPartialsRaw(data string, partials mustache.PartialProvider, forceRaw bool, context ...interface{}) (string, error) {
	tmpl := mustache.New()
	if forceRaw {
		tmpl = tmpl.WithEscapeMode(mustache.EscapeRaw)
	}
	if partials != nil {
		tmpl = tmpl.WithPartials(partials)
	}
	renderer, err := tmpl.CompileString(data)
	if err != nil {
		return "", err
	}
	return renderer.Render(mergeContext(context))
}

// RenderInLayout compiles a mustache template string and layout "wrapper" and
// uses the given data source - generally a map or struct - to render the
// compiled templates and return the output.
func RenderInLayout(data string, layoutData string, context ...interface{}) (string, error) {
	return RenderInLayoutPartials(data, layoutData, nil, context...)
}

// RenderInLayoutPartials compiles a mustache template string and layout
// "wrapper" and uses the given data source - generally a map or struct - to
// render the compiled templates and return the output.
func RenderInLayoutPartials(data string, layoutData string, partials mustache.PartialProvider, context ...interface{}) (string, error) {
	layoutCmpl := mustache.New()
	if partials != nil {
		layoutCmpl = layoutCmpl.WithPartials(partials)
	}
	layoutTmpl, err := layoutCmpl.CompileString(layoutData)
	if err != nil {
		return "", err
	}
	cmpl := mustache.New()
	if partials != nil {
		cmpl = cmpl.WithPartials(partials)
	}
	tmpl, err := cmpl.CompileString(data)
	if err != nil {
		return "", err
	}
	return tmpl.RenderInLayout(layoutTmpl, mergeContext(context))
}

// RenderFile loads a mustache template string from a file and compiles it, and
// then uses the given data source - generally a map or struct - to render
// the template and return the output.
func RenderFile(filename string, context ...interface{}) (string, error) {
	tmpl, err := mustache.New().CompileFile(filename)
	if err != nil {
		return "", err
	}
	return tmpl.Render(mergeContext(context))
}

// RenderFileInLayout loads a mustache template string and layout "wrapper"
// template string from files and compiles them, and then uses the given
// data source - generally a map or struct - to render the compiled templates
// and return the output.
func RenderFileInLayout(filename string, layoutFile string, context ...interface{}) (string, error) {
	layoutTmpl, err := mustache.New().CompileFile(layoutFile)
	if err != nil {
		return "", err
	}

	tmpl, err := mustache.New().CompileFile(filename)
	if err != nil {
		return "", err
	}
	return tmpl.RenderInLayout(layoutTmpl, mergeContext(context))
}
