package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/orbharness/internal/codec"
)

//go:embed battery.cue
var batterySchema string

// LoadBattery reads and checks a YAML battery file.
//
// Checking happens in three passes: the document is unified with the
// #Battery CUE definition (types, allowed keys, enumerations), then decoded
// strictly into Battery, then checked for cross-scenario rules that a
// schema cannot express.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read battery file: %w", err)
	}
	b, err := ParseBattery(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ParseBattery is LoadBattery for an in-memory document.
func ParseBattery(data []byte) (*Battery, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := checkSchema(doc); err != nil {
		return nil, err
	}

	var b Battery
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateBattery(&b); err != nil {
		return nil, fmt.Errorf("invalid battery: %w", err)
	}
	return &b, nil
}

func checkSchema(doc any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(batterySchema, cue.Filename("battery.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("battery schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Battery")).Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("battery does not match schema:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}

// validateBattery enforces the rules between scenarios.
func validateBattery(b *Battery) error {
	seen := make(map[string]int, len(b.Scenarios))
	for i, s := range b.Scenarios {
		if s.Label == "" {
			return fmt.Errorf("scenarios[%d]: label is required", i)
		}
		if j, dup := seen[s.Label]; dup {
			return fmt.Errorf("scenarios[%d]: label %q already used by scenarios[%d]", i, s.Label, j)
		}
		switch s.Verb {
		case codec.VerbGet, codec.VerbSet:
		default:
			return fmt.Errorf("scenarios[%d] (%s): unknown verb %q", i, s.Label, s.Verb)
		}
		switch s.Expect {
		case "", ExpectSuccess, ExpectFailure:
		default:
			return fmt.Errorf("scenarios[%d] (%s): unknown expect %q", i, s.Label, s.Expect)
		}
		if s.CompareWith != "" {
			if _, ok := seen[s.CompareWith]; !ok {
				return fmt.Errorf("scenarios[%d] (%s): compare_with %q does not name an earlier scenario", i, s.Label, s.CompareWith)
			}
		}
		seen[s.Label] = i
	}
	return nil
}
