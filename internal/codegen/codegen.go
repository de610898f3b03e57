package codegen

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/Lumos-Labs-HQ/itrunner/internal/gencommon"
	"github.com/Lumos-Labs-HQ/itrunner/internal/graph"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

const (
	EngineFile = "engine_gen.go"
	RunnerFile = "runner_gen.go"
)

const generatedHeader = "// Code generated by itrunner"

//go:embed templates/*.go.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("codegen").
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	ParseFS(templateFS, "templates/*.go.tmpl"))

// Options controls the generated package.
type Options struct {
	Package string
	// Source names the schema in the generated header.
	Source        string
	Runner        bool
	DefaultSeeder bool
}

// File is one generated source file, named relative to the output dir.
type File struct {
	Name    string
	Content []byte
}

// Generate builds the model graph, orders it and renders the engine. Nothing
// is rendered when the graph is invalid or cyclic.
func Generate(descs []types.ModelDescriptor, opts Options) ([]File, *Plan, error) {
	if opts.Package == "" {
		opts.Package = "fixtures"
	}
	if opts.Source == "" {
		opts.Source = "schema"
	}
	if !isValidIdentifier(opts.Package) {
		return nil, nil, fmt.Errorf("invalid package name %q", opts.Package)
	}

	g, err := graph.Build(descs)
	if err != nil {
		return nil, nil, err
	}
	groups, err := graph.Stratify(g)
	if err != nil {
		return nil, nil, err
	}
	plan, err := NewPlan(g, groups, opts)
	if err != nil {
		return nil, nil, err
	}

	files := []File{}
	engine, err := Render(EngineFile, "engine.go.tmpl", plan)
	if err != nil {
		return nil, nil, err
	}
	files = append(files, engine)

	if plan.Runner {
		runner, err := Render(RunnerFile, "runner.go.tmpl", plan)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, runner)
	}
	return files, plan, nil
}

// Render executes one template against plan and gofmts the result.
func Render(name, tmpl string, plan *Plan) (File, error) {
	b := gencommon.GetBuilder()
	defer gencommon.PutBuilder(b)

	if err := templates.ExecuteTemplate(b, tmpl, plan); err != nil {
		return File{}, fmt.Errorf("render %s: %w", name, err)
	}
	src, err := imports.Process(name, []byte(b.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return File{}, fmt.Errorf("format %s: %w", name, err)
	}
	return File{Name: name, Content: src}, nil
}

// Write stores files in dir. Files whose content matches both the cache and
// the disk are skipped. It returns the names actually written.
func Write(dir string, files []File, cache *gencommon.GenerationCache) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, f := range files {
		if cache != nil && cache.Unchanged(f.Name, f.Content) {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Content, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		written = append(written, f.Name)
		if cache != nil {
			cache.UpdateGeneratedFile(f.Name, f.Content)
		}
	}

	if cache != nil {
		cache.MarkGeneration()
		if err := cache.Save(); err != nil {
			return written, fmt.Errorf("failed to save generation cache: %w", err)
		}
	}
	return written, nil
}

// Prune removes files in dir that an earlier run generated but files no
// longer contains. Only files carrying the itrunner header are removed.
// It returns the names removed.
func Prune(dir string, files []File, cache *gencommon.GenerationCache) ([]string, error) {
	candidates := []string{EngineFile, RunnerFile}
	if cache != nil {
		for _, name := range cache.GeneratedFiles() {
			if !slices.Contains(candidates, name) {
				candidates = append(candidates, name)
			}
		}
	}

	var removed []string
	for _, name := range candidates {
		if slices.ContainsFunc(files, func(f File) bool { return f.Name == name }) {
			continue
		}
		if cache != nil {
			cache.Forget(name)
		}
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if !bytes.HasPrefix(content, []byte(generatedHeader)) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
