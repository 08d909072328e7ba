// Package schema generates the JSON schema of deployment documents.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/invopop/jsonschema"
)

// ID is the $id of the generated schema.
const ID = "https://github.com/3bit-techs/vvpctl/deployment.schema.json"

// Generate reflects the schema of v1alpha1.Deployment.
func Generate() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Mapper:                    enumMapper,
	}

	schema := reflector.Reflect(&v1alpha1.Deployment{})
	schema.ID = ID
	schema.Title = "Ververica Platform Deployment"
	schema.Description = "Desired state of a deployment reconciled by vvpctl"

	if schema.Properties != nil {
		if p, ok := schema.Properties.Get("apiVersion"); ok && p != nil {
			p.Enum = []any{v1alpha1.APIVersion}
		}

		if p, ok := schema.Properties.Get("kind"); ok && p != nil {
			p.Enum = []any{v1alpha1.Kind}
		}
	}

	return schema
}

// JSON returns the indented schema.
func JSON() ([]byte, error) {
	data, err := json.MarshalIndent(Generate(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}

// enumMapper maps types implementing v1alpha1.EnumValuer to string enums.
func enumMapper(t reflect.Type) *jsonschema.Schema {
	enumValuerType := reflect.TypeFor[v1alpha1.EnumValuer]()
	if !reflect.PointerTo(t).Implements(enumValuerType) {
		return nil
	}

	valuer, ok := reflect.New(t).Interface().(v1alpha1.EnumValuer)
	if !ok {
		return nil
	}

	values := valuer.ValidValues()

	enum := make([]any, len(values))
	for i, value := range values {
		enum[i] = value
	}

	return &jsonschema.Schema{Type: "string", Enum: enum}
}
