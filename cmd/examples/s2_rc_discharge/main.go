// s2_rc_discharge discharges a charged capacitor through a single resistor
// and reports the decaying charge trajectory.
package main

import (
	"fmt"
	"log"

	"stepcircuit/pkg/circuit"
	"stepcircuit/pkg/device"
	"stepcircuit/pkg/util"
)

func main() {
	fmt.Print("===== S2: RC discharge =====\n\n")

	cap := device.NewCapacitor("cap", 1e-3, 1)
	res := device.NewResistance("res", 100)
	gnd := device.NewGround("gnd")

	sim := circuit.New()
	sim.AddNodes(cap, res, gnd)
	sim.AddLinks(
		circuit.NewLink("l0", cap.Ports()[0], res.Ports()[0], gnd.Ports()[0]),
		circuit.NewLink("l1", cap.Ports()[1], res.Ports()[1]),
	)

	if err := sim.Simulate(0.1, 1); err != nil {
		log.Fatalf("simulate: %v", err)
	}

	q := cap.Get("q")
	fmt.Println("charge history:")
	for t, v := range q.Values() {
		fmt.Printf("  t=%d q=%s\n", t, util.FormatValueFactor(v, "C"))
	}
}
