package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/verzoeken/pkg/httpclient"
)

// Schemas holds the component schemas of one OpenAPI document.
type Schemas struct {
	location string
	compiler *jsonschema.Compiler
}

// LoadSchemas reads an OpenAPI document (YAML or JSON) from a url or a file path.
func LoadSchemas(ctx context.Context, location string, client *httpclient.Client) (*Schemas, error) {
	raw, err := read(ctx, location, client)
	if err != nil {
		return nil, err
	}
	return ParseSchemas(location, raw)
}

// ParseSchemas compiles the components.schemas section of an OpenAPI document.
func ParseSchemas(location string, raw []byte) (*Schemas, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document %s: %w", location, err)
	}

	components, _ := doc["components"].(map[string]any)
	schemas, _ := components["schemas"].(map[string]any)
	if len(schemas) == 0 {
		return nil, fmt.Errorf("OpenAPI document %s has no component schemas", location)
	}

	converted, err := json.Marshal(map[string]any{
		"components": map[string]any{"schemas": toJSONSchema(schemas)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI document %s: %w", location, err)
	}

	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(converted))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft4)
	if err := compiler.AddResource(resourceURL(location), resource); err != nil {
		return nil, fmt.Errorf("failed to register OpenAPI document %s: %w", location, err)
	}

	return &Schemas{location: location, compiler: compiler}, nil
}

// Compile returns the schema registered under components.schemas.name.
func (s *Schemas) Compile(name string) (*jsonschema.Schema, error) {
	schema, err := s.compiler.Compile(resourceURL(s.location) + "#/components/schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s of %s: %w", name, s.location, err)
	}
	return schema, nil
}

func resourceURL(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	return "file:///" + strings.TrimPrefix(location, "/")
}

func read(ctx context.Context, location string, client *httpclient.Client) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		raw, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read OpenAPI document %s: %w", location, err)
		}
		return raw, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.oai.openapi, application/yaml, application/json")

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI document %s: %w", location, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to fetch OpenAPI document %s: status %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}

// toJSONSchema rewrites the OpenAPI dialect into plain JSON Schema: nullable becomes a null type.
func toJSONSchema(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = toJSONSchema(value)
		}
		nullable, isKeyword := out["nullable"].(bool)
		if !isKeyword {
			return out
		}
		delete(out, "nullable")
		if nullable {
			if t, ok := out["type"].(string); ok {
				out["type"] = []any{t, "null"}
			}
			if enum, ok := out["enum"].([]any); ok {
				out["enum"] = append(enum, nil)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = toJSONSchema(value)
		}
		return out
	default:
		return v
	}
}
