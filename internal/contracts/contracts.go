// Package contracts validates catalog feed payloads against embedded JSON
// schemas before they are mapped into listings.
package contracts

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	Listing = "listing"
	Review  = "review"
)

var (
	once     sync.Once
	compiled map[string]*jsonschema.Schema
	initErr  error
)

func load() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	compiled = map[string]*jsonschema.Schema{}
	for _, name := range []string{Listing, Review} {
		path := "schemas/" + name + ".json"
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			initErr = fmt.Errorf("read schema %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(path, bytes.NewReader(raw)); err != nil {
			initErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
		s, err := compiler.Compile(path)
		if err != nil {
			initErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		compiled[name] = s
	}
}

// Validate checks a decoded JSON document (as produced by encoding/json into
// map[string]any) against the named schema.
func Validate(name string, doc any) error {
	once.Do(load)
	if initErr != nil {
		return initErr
	}
	s, ok := compiled[name]
	if !ok {
		return fmt.Errorf("schema %q not found", name)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s payload: %w", name, err)
	}
	return nil
}
