package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/gravitas-games/shoptiles/internal/contentpack"
)

var documents = map[string]struct {
	value       interface{}
	title       string
	description string
}{
	"manifest": {new(contentpack.Manifest), "Content Pack Manifest", "Identifies a content pack"},
	"items":    {new(contentpack.ItemsFile), "Content Pack Items", "Items a pack adds to the catalog"},
	"shops":    {new(contentpack.ShopsFile), "Content Pack Shops", "Shops and stock additions declared by a pack"},
	"harvest":  {new(contentpack.HarvestFile), "Content Pack Harvest Rules", "Extra drops of harvested crops"},
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas to")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for name, doc := range documents {
		schema := buildSchema(doc.value, doc.title, doc.description)
		if err := writeSchema(filepath.Join(outDir, name+".schema.json"), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s schema: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func buildSchema(v interface{}, title, description string) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(v)
	schema.Title = title
	schema.Description = description
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
