// s1_capacitor_charge drives a constant current into a capacitor against
// ground and reports the charge trajectory, the scenario used to check
// that a fixed current integrates linearly into an initial charge.
package main

import (
	"fmt"
	"log"

	"stepcircuit/pkg/circuit"
	"stepcircuit/pkg/device"
	"stepcircuit/pkg/util"
)

func main() {
	fmt.Print("===== S1: capacitor + current source + ground =====\n\n")

	cap := device.NewCapacitor("cap", 1e-3, 1)
	cur := device.NewCurrentSource("cur", 1)
	gnd := device.NewGround("gnd")

	sim := circuit.New()
	sim.AddNodes(cap, cur, gnd)
	sim.AddLinks(
		circuit.NewLink("l0", cur.Ports()[0], cap.Ports()[0], gnd.Ports()[0]),
		circuit.NewLink("l1", cur.Ports()[1], cap.Ports()[1]),
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
