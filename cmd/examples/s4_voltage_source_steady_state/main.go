// s4_voltage_source_steady_state checks that an ideal voltage source into a
// resistor reaches its steady-state current immediately, at every step.
package main

import (
	"fmt"
	"log"

	"stepcircuit/pkg/circuit"
	"stepcircuit/pkg/device"
	"stepcircuit/pkg/util"
)

func main() {
	fmt.Print("===== S4: voltage source + resistor =====\n\n")

	vol := device.NewVoltageSource("vol", 1)
	res := device.NewResistance("res", 1e3)
	gnd := device.NewGround("gnd")

	sim := circuit.New()
	sim.AddNodes(vol, res, gnd)
	sim.AddLinks(
		circuit.NewLink("l0", vol.Ports()[0], res.Ports()[0], gnd.Ports()[0]),
		circuit.NewLink("l1", vol.Ports()[1], res.Ports()[1]),
	)

	if err := sim.Simulate(0.1, 1); err != nil {
		log.Fatalf("simulate: %v", err)
	}

	i := res.Ports()[0].I
	fmt.Println("resistor port0 current history:")
	for t, v := range i.Values() {
		fmt.Printf("  t=%d i=%s\n", t, util.FormatValueFactor(v, "A"))
	}
}
