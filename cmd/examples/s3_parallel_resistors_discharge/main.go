// s3_parallel_resistors_discharge discharges a capacitor through two
// parallel resistors, whose combined decay constant reflects R1*R2/(R1+R2).
package main

import (
	"fmt"
	"log"

	"stepcircuit/pkg/circuit"
	"stepcircuit/pkg/device"
	"stepcircuit/pkg/util"
)

func main() {
	fmt.Print("===== S3: two resistors + capacitor discharge =====\n\n")

	cap := device.NewCapacitor("cap", 1e-3, 1)
	r1 := device.NewResistance("r1", 100)
	r2 := device.NewResistance("r2", 50)
	gnd := device.NewGround("gnd")

	sim := circuit.New()
	sim.AddNodes(cap, r1, r2, gnd)
	sim.AddLinks(
		circuit.NewLink("l0", cap.Ports()[0], r1.Ports()[0], r2.Ports()[0], gnd.Ports()[0]),
		circuit.NewLink("l1", cap.Ports()[1], r1.Ports()[1], r2.Ports()[1]),
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
