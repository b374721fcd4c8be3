package extract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// profileSchema validates the document shape of a rule profile before the
// rules themselves are compiled. Malformed profiles fail here, before any
// document is processed.
const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "version", "rules"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "integer", "minimum": 1},
    "rules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["field", "pattern"],
        "additionalProperties": false,
        "properties": {
          "field": {"type": "string", "minLength": 1},
          "pattern": {"type": "string", "minLength": 1},
          "strategy": {"enum": ["first", "last", "aggregate"]},
          "normalizer": {"enum": ["none", "date", "amount", "collapse_spaces"]},
          "group": {"type": "string"}
        }
      }
    }
  }
}`

//go:embed profiles/invoice_jp.json
var defaultProfileJSON []byte

// LoadProfile reads and validates a rule profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrRuleProfileInvalid, path, err)
	}
	return ParseProfile(data)
}

// DefaultProfile returns the embedded Japanese invoice profile, mirroring
// the layouts the system was originally tuned for.
func DefaultProfile() *Profile {
	profile, err := ParseProfile(defaultProfileJSON)
	if err != nil {
		// The embedded profile is validated by tests; reaching this means a
		// broken build.
		panic(fmt.Sprintf("embedded default profile invalid: %v", err))
	}
	return profile
}

// ParseProfile validates raw profile JSON against the profile schema and
// decodes it. Pattern compilation and cross-rule checks happen when the
// extraction engine is constructed.
func ParseProfile(data []byte) (*Profile, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.json", bytes.NewReader([]byte(profileSchema))); err != nil {
		return nil, fmt.Errorf("%w: loading schema: %v", ErrRuleProfileInvalid, err)
	}
	schema, err := compiler.Compile("profile.json")
	if err != nil {
		return nil, fmt.Errorf("%w: compiling schema: %v", ErrRuleProfileInvalid, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleProfileInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleProfileInvalid, err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleProfileInvalid, err)
	}
	return &profile, nil
}
