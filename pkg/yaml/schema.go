package yaml

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"golang.org/x/tools/go/packages"
)

// SchemaGenerator reflects a JSON schema from a configuration object.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	obj  any
	pkgs []string
}

// NewSchemaGenerator creates a generator for obj. The pkgs are Go import
// paths whose doc comments are folded into the schema descriptions.
func NewSchemaGenerator(obj any, pkgs ...string) *SchemaGenerator {
	return &SchemaGenerator{
		obj:  obj,
		pkgs: pkgs,
	}
}

// Generate reflects the schema and returns it as indented JSON.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := new(jsonschema.Reflector)

	// Resolve import paths to directories so generation works from any
	// working directory, including go:generate.
	loaded, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
	}, g.pkgs...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	for _, pkg := range loaded {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("load package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}

		if len(pkg.GoFiles) == 0 {
			continue
		}

		dir := filepath.Dir(pkg.GoFiles[0])

		err := r.AddGoComments(pkg.PkgPath, dir)
		if err != nil {
			return nil, fmt.Errorf("add comments from %s: %w", pkg.PkgPath, err)
		}
	}

	jss := r.Reflect(g.obj)

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
