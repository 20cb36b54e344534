package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// CircuitMatrix is a thin real-valued wrapper over sparse.Matrix: element
// and RHS accumulation, factor, solve. The teacher's own CircuitMatrix also
// carries AC/complex-analysis and debug-print machinery this domain never
// runs (the simulator only ever needs real Newton-Raphson linear solves),
// so that surface isn't carried over here.
type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

// NewMatrix allocates a size x size real sparse matrix, 1-based indexed to
// match sparse's own convention.
func NewMatrix(size int) *CircuitMatrix {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
		Annotate:       0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		fmt.Printf("Error creating sparse matrix: %v\n", err)
		return nil
	}

	vectorSize := size + 1 // 1-based indexing

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, vectorSize),
		solution: make([]float64, vectorSize),
		config:   config,
	}
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		fmt.Printf("Warning: Matrix index out of bounds (i=%d, j=%d, size=%d)\n", i, j, m.Size)
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		fmt.Printf("Warning: RHS index out of bounds (i=%d, size=%d)\n", i, m.Size)
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *CircuitMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %v", err)
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %v", err)
	}
	m.solution = solution

	return nil
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
