package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/oapilot/agent-engine/internal/catalog"
)

// validateArguments checks the call arguments against the descriptor's
// parameter schema. Compiled schemas are cached per tool name until the
// next catalog swap.
func (d *Dispatcher) validateArguments(desc catalog.Descriptor, args map[string]any) error {
	schema, err := d.schemaFor(desc)
	if err != nil {
		return err
	}
	var value any = map[string]any{}
	if args != nil {
		value = args
	}
	return schema.Validate(value)
}

func (d *Dispatcher) schemaFor(desc catalog.Descriptor) (*jsonschema.Schema, error) {
	name := desc.Tool.Name

	d.mu.RLock()
	cached, ok := d.schemas[name]
	d.mu.RUnlock()
	if ok {
		return cached, nil
	}

	raw, err := json.Marshal(desc.Tool.InputSchema)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	resource := "mem://tools/" + name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.schemas[name] = compiled
	d.mu.Unlock()
	return compiled, nil
}
