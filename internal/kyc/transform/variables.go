package transform

// VariableType is the declared type of a task variable in the workflow engine.
type VariableType string

const (
	TypeString  VariableType = "String"
	TypeBoolean VariableType = "Boolean"
)

// Variable is one typed entry of the engine's flat variable store.
type Variable struct {
	Value any          `json:"value"`
	Type  VariableType `json:"type"`
}

// TaskVariableMap is the variables payload of an external task completion.
type TaskVariableMap map[string]Variable

// String returns the value of a String variable and whether key is present
// with that type.
func (v TaskVariableMap) String(key string) (string, bool) {
	got, ok := v[key]
	if !ok || got.Type != TypeString {
		return "", false
	}
	s, ok := got.Value.(string)
	return s, ok
}

// Bool returns the value of a Boolean variable and whether key is present
// with that type.
func (v TaskVariableMap) Bool(key string) (bool, bool) {
	got, ok := v[key]
	if !ok || got.Type != TypeBoolean {
		return false, false
	}
	b, ok := got.Value.(bool)
	return b, ok
}

// Keys lists every variable name the transformer can emit, in emission order.
func Keys() []string {
	out := make([]string, 0, len(emissions)+1)
	for _, e := range emissions {
		out = append(out, e.key)
	}
	return append(out, KeyCompleteFormData)
}
