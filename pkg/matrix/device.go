package matrix

// JacobianMatrix is the narrow interface the Newton-Raphson solver programs
// against when assembling and factoring a step's linearized system, rather
// than depending on *CircuitMatrix directly.
type JacobianMatrix interface {
	AddElement(i, j int, value float64) // 1-based indexing
	AddRHS(i int, value float64)
	Clear()
	Solve() error
	Solution() []float64
	Destroy()
}
