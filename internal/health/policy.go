package health

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mode selects where a metric's value comes from.
type Mode int

const (
	// Live queries the provider.
	Live Mode = iota
	// Placeholder writes a fixed constant and never touches the provider.
	Placeholder
)

func (m Mode) String() string {
	if m == Placeholder {
		return "placeholder"
	}
	return "live"
}

type Policy struct {
	Mode  Mode
	Value float64
}

func LivePolicy() Policy { return Policy{Mode: Live} }

func PlaceholderPolicy(v float64) Policy { return Policy{Mode: Placeholder, Value: v} }

// PolicyTable maps kinds to their policy. Kinds missing from the table are
// live.
type PolicyTable map[Kind]Policy

// DefaultPolicies are the metrics not yet wired to a live provider query.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		KindBodyMassIndex:          PlaceholderPolicy(25.5),
		KindLeanBodyMass:           PlaceholderPolicy(63.5),
		KindBodyFatPercentage:      PlaceholderPolicy(19.2),
		KindWaistCircumference:     PlaceholderPolicy(0.34),
		KindSystolicBloodPressure:  PlaceholderPolicy(121.0),
		KindDiastolicBloodPressure: PlaceholderPolicy(80.0),
		KindBloodGlucose:           PlaceholderPolicy(85.0),
	}
}

// AllLivePolicies returns an empty table, i.e. every kind live.
func AllLivePolicies() PolicyTable {
	return PolicyTable{}
}

// For returns the policy for kind. Characteristics are always live.
func (t PolicyTable) For(kind Kind) Policy {
	if kind.IsCharacteristic() {
		return LivePolicy()
	}
	if p, ok := t[kind]; ok {
		return p
	}
	return LivePolicy()
}

func (t PolicyTable) Clone() PolicyTable {
	out := make(PolicyTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// String renders the table in the format accepted by ParsePolicies.
func (t PolicyTable) String() string {
	parts := make([]string, 0, len(t))
	for k, p := range t {
		if p.Mode == Placeholder {
			parts = append(parts, string(k)+"="+strconv.FormatFloat(p.Value, 'g', -1, 64))
		} else {
			parts = append(parts, string(k)+"=live")
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// ParsePolicies applies overrides of the form "bodyMassIndex=25.5,bloodGlucose=live"
// on top of base. base is not modified.
func ParsePolicies(list string, base PolicyTable) (PolicyTable, error) {
	out := base.Clone()
	list = strings.TrimSpace(list)
	if list == "" {
		return out, nil
	}
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("health: policy %q: expected kind=value", entry)
		}
		kind, err := ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if kind.IsCharacteristic() {
			return nil, fmt.Errorf("health: policy %q: characteristics are always live", entry)
		}
		value = strings.TrimSpace(value)
		if strings.EqualFold(value, "live") {
			out[kind] = LivePolicy()
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("health: policy %q: %w", entry, err)
		}
		out[kind] = PlaceholderPolicy(v)
	}
	return out, nil
}
