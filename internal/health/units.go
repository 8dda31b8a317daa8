package health

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is a provider unit string such as "kg", "count/min" or "mg/dL".
type Unit string

const (
	UnitCount                 Unit = "count"
	UnitCountPerMinute        Unit = "count/min"
	UnitMeter                 Unit = "m"
	UnitKilogram              Unit = "kg"
	UnitPercent               Unit = "%"
	UnitMillimeterOfMercury   Unit = "mmHg"
	UnitMilligramPerDeciliter Unit = "mg/dL"
)

var ErrIncompatibleUnit = errors.New("health: incompatible unit")

type dimension int

const (
	dimCount dimension = iota + 1
	dimRate
	dimLength
	dimMass
	dimPercent
	dimPressure
	dimGlucose
)

// unitDef scales a value in the unit to the dimension's base unit.
type unitDef struct {
	dim    dimension
	factor float64
}

// Base units: count, count/min, m, kg, %, mmHg, mg/dL.
var units = map[Unit]unitDef{
	"count":     {dimCount, 1},
	"count/min": {dimRate, 1},
	"count/s":   {dimRate, 60},
	"count/h":   {dimRate, 1.0 / 60},
	"m":         {dimLength, 1},
	"cm":        {dimLength, 0.01},
	"mm":        {dimLength, 0.001},
	"km":        {dimLength, 1000},
	"in":        {dimLength, 0.0254},
	"ft":        {dimLength, 0.3048},
	"kg":        {dimMass, 1},
	"g":         {dimMass, 0.001},
	"mg":        {dimMass, 1e-6},
	"lb":        {dimMass, 0.45359237},
	"oz":        {dimMass, 0.028349523125},
	"st":        {dimMass, 6.35029318},
	"%":         {dimPercent, 1},
	"fraction":  {dimPercent, 100},
	"mmHg":      {dimPressure, 1},
	"kPa":       {dimPressure, 7.50061683},
	"cmAq":      {dimPressure, 0.73555912},
	"mg/dL":     {dimGlucose, 1},
	"mmol/L":    {dimGlucose, 18.0156},
}

// Quantity is a value expressed in a provider unit.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func lookupUnit(u Unit) (unitDef, bool) {
	if def, ok := units[u]; ok {
		return def, true
	}
	for name, def := range units {
		if strings.EqualFold(string(name), string(u)) {
			return def, true
		}
	}
	return unitDef{}, false
}

// Convert returns the quantity's value expressed in unit to.
func Convert(q Quantity, to Unit) (float64, error) {
	from, ok := lookupUnit(q.Unit)
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrIncompatibleUnit, q.Unit)
	}
	target, ok := lookupUnit(to)
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrIncompatibleUnit, to)
	}
	if from.dim != target.dim {
		return 0, fmt.Errorf("%w: %q to %q", ErrIncompatibleUnit, q.Unit, to)
	}
	if from.factor == target.factor {
		return q.Value, nil
	}
	return q.Value * from.factor / target.factor, nil
}

// CompatibleUnit reports whether u can be converted to kind's display unit.
func CompatibleUnit(kind Kind, u Unit) bool {
	_, err := Convert(Quantity{Value: 0, Unit: u}, kind.DisplayUnit())
	return err == nil
}
