// Command schemagen regenerates the JSON schema embedded next to the
// configuration types.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/grove/api/v1beta1/configs"
	"github.com/macropower/grove/pkg/yaml"
)

var outFile = flag.String("o", "schema.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	gen := yaml.NewSchemaGenerator(configs.New(),
		"github.com/macropower/grove/api/v1beta1/configs",
		"github.com/macropower/grove/pkg/action",
		"github.com/macropower/grove/pkg/rule",
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
