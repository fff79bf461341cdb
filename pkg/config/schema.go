package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/sfdelta-config.schema.json
var configSchema []byte

// ValidationError lists every schema violation found in a config document.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for %s:\n- %s", e.Source, strings.Join(e.Problems, "\n- "))
}

// SchemaJSON returns the embedded configuration schema.
func SchemaJSON() []byte {
	out := make([]byte, len(configSchema))
	copy(out, configSchema)
	return out
}

// decodeDocument parses YAML config data into a generic document and checks
// it against the embedded schema. An empty document is valid.
func decodeDocument(source string, data []byte) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	normalizeVersion(doc)

	if err := ValidateDocument(source, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateDocument validates a decoded config document against the schema.
func ValidateDocument(source string, doc map[string]interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s for validation: %w", source, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(configSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Source: source, Problems: problems}
}

// normalizeVersion turns an unquoted YAML `version: 64.0` (decoded as a float)
// back into the "64.0" string form manifests carry.
func normalizeVersion(doc map[string]interface{}) {
	pkg, ok := doc["package"].(map[string]interface{})
	if !ok {
		return
	}
	var s string
	switch v := pkg["version"].(type) {
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	default:
		return
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	pkg["version"] = s
}
