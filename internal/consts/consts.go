// Package consts holds SI unit symbol strings. The example mains do not
// import it; they pass their unit strings to util.FormatValueFactor as
// literals.
package consts

const (
	Ampere = "A"
	Volt   = "V"
	Farad  = "F"
	Ohm    = "Ohm"
	Second = "s"
)
