package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes. Uninitialized and Void values
// become null; non-finite doubles become their printed form.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case IntValue:
		return val.Value
	case DoubleValue:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			return FormatDouble(val.Value)
		}
		return val.Value
	case StringValue:
		return val.Value
	case BoolValue:
		return val.Value
	case ArrayValue:
		items := make([]any, len(val.Elements))
		for i, item := range val.Elements {
			items[i] = valueToRaw(item)
		}
		return items
	}
	return nil
}

// GlobalsToJSON marshals root-frame bindings as an object in declaration
// order. Pending bindings are reported as null without being resolved.
func GlobalsToJSON(globals []*Binding) ([]byte, error) {
	return json.Marshal(&orderedBindings{bindings: globals})
}

// orderedBindings preserves declaration order in JSON output.
type orderedBindings struct {
	bindings []*Binding
}

func (o *orderedBindings) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, b := range o.bindings {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(b.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		valBytes, err := ValueToJSON(b.Value())
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}
