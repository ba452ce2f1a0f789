package project

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// JSONSchema renders the JSON Schema of the current configuration record,
// for editor integration and external validation.
func JSONSchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&projecttypes.Config{})
	schema.Title = "dskit project configuration"
	schema.Description = "Schema for .dskit/config.yaml, version " + strconv.Itoa(CurrentVersion)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal configuration schema")
	}
	return string(data), nil
}
