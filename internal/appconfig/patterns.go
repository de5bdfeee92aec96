package appconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mwiater/mdextract/internal/layout"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidPatterns is returned when a patterns file fails schema validation.
var ErrInvalidPatterns = errors.New("invalid patterns file")

// patternsSchema describes the patterns file:
//
//	{ "python": [["backend"], "\\.py$"], ... }
const patternsSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "minItems": 2,
    "maxItems": 2,
    "items": [
      {
        "type": "array",
        "items": {
          "type": "string",
          "pattern": "^[^/\\\\:]+$",
          "not": { "enum": [".", ".."] }
        }
      },
      { "type": "string", "minLength": 1 }
    ]
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(patternsSchema)

// LoadPatterns reads a patterns file and returns its entries in file order.
func LoadPatterns(path string) ([]layout.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read patterns file %q: %w", path, err)
	}
	patterns, err := ParsePatterns(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return patterns, nil
}

// ParsePatterns validates data against the patterns schema and decodes it.
func ParsePatterns(data []byte) ([]layout.Pattern, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatterns, err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPatterns, strings.Join(errs, ", "))
	}
	return decodeOrdered(data)
}

// decodeOrdered walks the top-level object token by token so that pattern
// precedence follows the file.
func decodeOrdered(data []byte) ([]layout.Pattern, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var patterns []layout.Pattern
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		language, _ := tok.(string)

		var entry []json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", language, err)
		}
		p := layout.Pattern{Language: language}
		if err := json.Unmarshal(entry[0], &p.Dirs); err != nil {
			return nil, fmt.Errorf("pattern %q dirs: %w", language, err)
		}
		if err := json.Unmarshal(entry[1], &p.Match); err != nil {
			return nil, fmt.Errorf("pattern %q match: %w", language, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}
