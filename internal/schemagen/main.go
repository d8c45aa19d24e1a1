// Command schemagen writes the JSON schemas of synthaser's file formats.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/macropower/synthaser/api/v1beta1/configs"
	"github.com/macropower/synthaser/pkg/synthase"
)

var (
	schemaType = flag.String("type", "configs", "Schema to generate, one of: [configs synthases]")
	outFile    = flag.String("o", "schema.json", "Output file for the generated schema")
)

func main() {
	flag.Parse()

	r := &jsonschema.Reflector{}

	var s *jsonschema.Schema

	switch *schemaType {
	case "configs":
		s = r.Reflect(configs.New())
	case "synthases":
		s = r.Reflect(synthase.Document{})
	default:
		log.Fatalf("unknown schema type %q", *schemaType)
	}

	jsData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Fatalf("marshal JSON schema: %v", err)
	}

	// Write schema.json file.
	err = os.WriteFile(*outFile, append(jsData, '\n'), 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
