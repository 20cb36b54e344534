// s6_battery_discharge discharges a Fabs-style battery into a resistive
// load and reports state of charge, terminal voltage and current.
package main

import (
	"fmt"
	"log"

	"stepcircuit/pkg/circuit"
	"stepcircuit/pkg/device"
	"stepcircuit/pkg/util"
)

func main() {
	fmt.Print("===== S6: Fabs battery discharge into a load =====\n\n")

	bat := device.NewBattery("bat",
		20,   // Tref
		1100, // QnomTref
		1.2,  // k
		0.34, // ri_oc
		2.15, // voc100_ref
		24,   // bat_series
		1,    // bat_parallel
		1,    // soc_init
	)
	res := device.NewResistance("res", 1e3)
	gnd := device.NewGround("gnd")

	sim := circuit.New()
	sim.AddNodes(bat, res, gnd)
	sim.AddLinks(
		circuit.NewLink("l0", bat.Ports()[0], res.Ports()[0], gnd.Ports()[0]),
		circuit.NewLink("l1", bat.Ports()[1], res.Ports()[1]),
	)

	if err := sim.Simulate(1e-4, 20); err != nil {
		log.Fatalf("simulate: %v", err)
	}

	soc := bat.Get("soc")
	v := bat.Ports()[0].V
	i := bat.Ports()[0].I

	fmt.Println("final readings:")
	n := len(soc.Values())
	fmt.Printf("  soc[%d]  = %.6f\n", n-1, soc.Values()[n-1])
	fmt.Printf("  v[%d]    = %s\n", n-1, util.FormatValueFactor(v.Values()[n-1], "V"))
	fmt.Printf("  i[%d]    = %s\n", n-1, util.FormatValueFactor(i.Values()[n-1], "A"))
}
