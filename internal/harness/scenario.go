package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a conformance scenario: declarations to install, a sequence
// of runtime operations with expectations, and assertions over the
// recorded dispatch trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists directories of CUE declarations, installed in order.
	// Relative paths are resolved against the scenario file's directory.
	Specs []string `yaml:"specs"`

	// Session is a fixed session id for deterministic traces.
	// If empty, "test-session-default" is used.
	Session string `yaml:"session,omitempty"`

	// Steps are executed in order against one runtime.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded trace and event store.
	Assertions []Assertion `yaml:"assertions"`
}

// Step kinds.
const (
	StepSubtype  = "subtype"
	StepNew      = "new"
	StepLoad     = "load"
	StepPut      = "put"
	StepSend     = "send"
	StepIndex    = "index"
	StepSetIndex = "set_index"
	StepCall     = "call"
	StepIntern   = "intern"
	StepCast     = "cast"
	StepIs       = "is"
)

// Step is one runtime operation.
//
// Values in args, named, index and value are YAML scalars, lists (foreign
// arrays) or maps (foreign objects). A string of the form $name refers to a
// value bound earlier with as.
type Step struct {
	Op string `yaml:"op"`

	// Target is the receiver: a bound $name, or a class name for statics.
	Target string `yaml:"target,omitempty"`
	Member string `yaml:"member,omitempty"`

	// Class is the type expression instantiated by new.
	Class string `yaml:"class,omitempty"`

	// Type is the target type of cast and is.
	Type string `yaml:"type,omitempty"`

	// Sub and Super are the operands of subtype.
	Sub   string `yaml:"sub,omitempty"`
	Super string `yaml:"super,omitempty"`

	Args     []any          `yaml:"args,omitempty"`
	Named    map[string]any `yaml:"named,omitempty"`
	Index    any            `yaml:"index,omitempty"`
	Value    any            `yaml:"value,omitempty"`
	TypeArgs []string       `yaml:"type_args,omitempty"`

	// As binds the step's result to a name.
	As string `yaml:"as,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies a step's expected outcome.
type Expect struct {
	// Value is compared with the step's result. Numbers compare by value;
	// a $name compares by identity.
	Value    any  `yaml:"value"`
	HasValue bool `yaml:"-"`

	// Error is the expected error code, e.g. NO_SUCH_METHOD or CAST_ERROR.
	Error string `yaml:"error,omitempty"`

	// SameAs names a binding the result must be identical to.
	SameAs string `yaml:"same_as,omitempty"`

	// Result is the expected answer of subtype and is.
	Result *bool `yaml:"result,omitempty"`
}

var expectKeys = map[string]bool{"value": true, "error": true, "same_as": true, "result": true}

// UnmarshalYAML records whether value was given, so value: null can be
// told apart from no value expectation.
func (e *Expect) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expect must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !expectKeys[key] {
			return fmt.Errorf("line %d: field %s not found in type harness.Expect", n.Content[i].Line, key)
		}
		if key == "value" {
			e.HasValue = true
		}
	}
	type plain Expect
	return n.Decode((*plain)(e))
}

// Assertion validates the recorded trace or the event store.
type Assertion struct {
	// Type is trace_contains, trace_order, trace_count or final_state.
	Type string `yaml:"type"`

	// Event filters used by trace_contains and trace_count. Empty fields
	// match anything.
	Op        string   `yaml:"op,omitempty"`
	Receiver  string   `yaml:"receiver,omitempty"`
	Member    string   `yaml:"member,omitempty"`
	ArgTypes  []string `yaml:"arg_types,omitempty"`
	Outcome   string   `yaml:"outcome,omitempty"`
	ErrorCode string   `yaml:"error_code,omitempty"`

	// Count is the expected number of matches (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected order of "op member" pairs (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Table, Where and Expect query the event store (final_state).
	Table  string         `yaml:"table,omitempty"`
	Where  map[string]any `yaml:"where,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative spec paths against basePath.
// Unknown fields (typos) and missing required fields are errors.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	for _, specPath := range scenario.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: spec directory not found: %s", specPath)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the file system.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	require := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, st.Op)
		}
		return nil
	}

	var err error
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case StepSubtype:
		if err = require("sub", st.Sub); err == nil {
			err = require("super", st.Super)
		}
	case StepNew:
		err = require("class", st.Class)
	case StepLoad, StepPut, StepSend:
		if err = require("target", st.Target); err == nil {
			err = require("member", st.Member)
		}
	case StepIndex, StepSetIndex, StepCall:
		err = require("target", st.Target)
	case StepIntern:
	case StepCast, StepIs:
		err = require("type", st.Type)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	if err != nil {
		return err
	}

	if e := st.Expect; e != nil {
		if e.Result != nil && st.Op != StepSubtype && st.Op != StepIs {
			return fmt.Errorf("steps[%d].expect: result only applies to subtype and is", index)
		}
		if e.Error != "" && (e.HasValue || e.SameAs != "") {
			return fmt.Errorf("steps[%d].expect: error excludes value and same_as", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" && a.Member == "" {
			return fmt.Errorf("assertions[%d]: op or member is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" && a.Member == "" {
			return fmt.Errorf("assertions[%d]: op or member is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
