package density

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/qdensity/internal/tensor"
)

// Check verifies that every matrix in rho [batch, dim, dim] is a density
// matrix within tol: Hermitian (ErrNotHermitian), positive semidefinite with
// all eigenvalues >= -tol (ErrNotPositive) and unit trace (ErrTraceNotOne).
// Failures are returned as *CheckError naming the batch element.
func Check[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B], tol float64) error {
	batch, dim, data, err := stack(rho)
	if err != nil {
		return err
	}

	for b := 0; b < batch; b++ {
		m := data[b*dim*dim : (b+1)*dim*dim]

		if d := maxAsymmetry(m, dim); d > tol || math.IsNaN(d) {
			return &CheckError{Index: b, Err: ErrNotHermitian, Value: d}
		}

		tr := 0.0
		for i := 0; i < dim; i++ {
			tr += m[i*dim+i]
		}
		if d := math.Abs(tr - 1); d > tol || math.IsNaN(d) {
			return &CheckError{Index: b, Err: ErrTraceNotOne, Value: tr}
		}

		vals, ok := eigenvalues(m, dim)
		if !ok {
			return &CheckError{Index: b, Err: ErrNotPositive, Value: math.NaN()}
		}
		if vals[0] < -tol {
			return &CheckError{Index: b, Err: ErrNotPositive, Value: vals[0]}
		}
	}
	return nil
}

// Eigenvalues returns the ascending eigenvalues of each matrix in rho.
// Matrices are symmetrized as (A + Aᵀ)/2 before factorization.
func Eigenvalues[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([][]float64, error) {
	batch, dim, data, err := stack(rho)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, batch)
	for b := range out {
		vals, ok := eigenvalues(data[b*dim*dim:(b+1)*dim*dim], dim)
		if !ok {
			return nil, &CheckError{Index: b, Err: ErrNotPositive, Value: math.NaN()}
		}
		out[b] = vals
	}
	return out, nil
}

// Purity returns tr(ρ²) for each matrix: 1 for a pure state, 1/dim for the
// maximally mixed state.
func Purity[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([]float64, error) {
	batch, dim, data, err := stack(rho)
	if err != nil {
		return nil, err
	}

	out := make([]float64, batch)
	for b := range out {
		m := mat.NewDense(dim, dim, data[b*dim*dim:(b+1)*dim*dim])
		var sq mat.Dense
		sq.Mul(m, m)
		out[b] = mat.Trace(&sq)
	}
	return out, nil
}

// Entropy returns the von Neumann entropy -Σ λ·ln λ of each matrix, in nats.
// Eigenvalues at or below zero contribute nothing.
func Entropy[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([]float64, error) {
	eig, err := Eigenvalues(rho)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(eig))
	for b, vals := range eig {
		s := 0.0
		for _, v := range vals {
			if v > 0 {
				s -= v * math.Log(v)
			}
		}
		out[b] = s
	}
	return out, nil
}

// ToCDense exports each matrix as a complex gonum matrix.
func ToCDense[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) ([]*mat.CDense, error) {
	batch, dim, data, err := stack(rho)
	if err != nil {
		return nil, err
	}

	out := make([]*mat.CDense, batch)
	for b := range out {
		c := make([]complex128, dim*dim)
		for i, v := range data[b*dim*dim : (b+1)*dim*dim] {
			c[i] = complex(v, 0)
		}
		out[b] = mat.NewCDense(dim, dim, c)
	}
	return out, nil
}

// stack widens rho to float64 and checks it is [batch, dim, dim].
func stack[T tensor.Float, B tensor.Backend](rho *tensor.Tensor[T, B]) (batch, dim int, data []float64, err error) {
	shape := rho.Shape()
	if len(shape) != 3 || shape[1] != shape[2] {
		return 0, 0, nil, &ShapeError{
			What:     "density matrices",
			Expected: tensor.Shape{-1, -1, -1},
			Actual:   shape.Clone(),
		}
	}
	return shape[0], shape[1], rho.Raw().Float64s(), nil
}

func maxAsymmetry(m []float64, dim int) float64 {
	worst := 0.0
	for i := 0; i < dim; i++ {
		for j := i + 1; j < dim; j++ {
			d := math.Abs(m[i*dim+j] - m[j*dim+i])
			if d > worst || math.IsNaN(d) {
				worst = d
			}
		}
	}
	return worst
}

func eigenvalues(m []float64, dim int) ([]float64, bool) {
	sym := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			sym.SetSym(i, j, (m[i*dim+j]+m[j*dim+i])/2)
		}
	}

	var es mat.EigenSym
	if !es.Factorize(sym, false) {
		return nil, false
	}
	return es.Values(nil), true
}
