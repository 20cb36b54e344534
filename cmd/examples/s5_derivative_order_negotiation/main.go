// s5_derivative_order_negotiation shows the simulation's derivative order
// rising as nodes with higher minimums are added, and the configuration
// error raised by stepping a network that was never initialized.
package main

import (
	"fmt"

	"stepcircuit/pkg/circuit"
	"stepcircuit/pkg/device"
)

func main() {
	fmt.Print("===== S5: derivative-order negotiation =====\n\n")

	res := device.NewResistance("res", 1e3)
	vol := device.NewVoltageSource("vol", 1)

	sim := circuit.New()
	sim.AddNodes(res, vol)
	fmt.Printf("resistors + sources only: derivative_order = %d\n", sim.DerivativeOrder())

	cap := device.NewCapacitor("cap", 1e-3, 0)
	sim.AddNodes(cap)
	fmt.Printf("after adding a capacitor: derivative_order = %d\n", sim.DerivativeOrder())

	bat := device.NewBattery("bat", 20, 1100, 1.2, 0.34, 2.15, 24, 1, 1)
	sim.AddNodes(bat)
	fmt.Printf("after adding a battery: derivative_order = %d\n", sim.DerivativeOrder())

	fresh := circuit.New()
	fresh.AddNodes(device.NewResistance("r", 1))
	if err := fresh.Run(); err != nil {
		fmt.Printf("stepping before initialize: %v\n", err)
	}
}
