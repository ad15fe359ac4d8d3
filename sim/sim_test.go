package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/go-estimation/fixkalman/noise"
)

func newFall(t *testing.T) *Discrete {
	t.Helper()

	// free fall with unit time step: [position, velocity, acceleration]
	A := mat.NewDense(3, 3, []float64{
		1, 1, 0.5,
		0, 1, 1,
		0, 0, 1,
	})
	C := mat.NewDense(1, 3, []float64{1, 0, 0})

	d, err := NewDiscrete(A, nil, C, nil)
	assert.NoError(t, err)

	return d
}

func TestNewDiscrete(t *testing.T) {
	assert := assert.New(t)

	d := newFall(t)
	nx, nu, ny := d.SystemDims()
	assert.Equal(3, nx)
	assert.Equal(0, nu)
	assert.Equal(1, ny)

	_, err := NewDiscrete(nil, nil, nil, nil)
	assert.Error(err)

	_, err = NewDiscrete(mat.NewDense(2, 3, nil), nil, nil, nil)
	assert.Error(err)
}

func TestDefaultOutputMatrix(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(2, 2, []float64{1, 1, 0, 1})
	d, err := NewDiscrete(A, nil, nil, nil)
	assert.NoError(err)

	// nil C defaults to the identity: the full state is observable
	_, _, ny := d.SystemDims()
	assert.Equal(2, ny)

	x := mat.NewVecDense(2, []float64{3, 5})
	y, err := d.Observe(x, nil, nil)
	assert.NoError(err)
	assert.InDelta(3, y.AtVec(0), 1e-12)
	assert.InDelta(5, y.AtVec(1), 1e-12)
}

func TestPropagateFreeFall(t *testing.T) {
	assert := assert.New(t)

	d := newFall(t)

	// propagating the free-fall model must reproduce the closed-form
	// series s(n) = 0.5*g*n^2
	g := 9.81
	x := mat.NewVecDense(3, []float64{0, 0, g})
	for i := 1; i <= 15; i++ {
		var err error
		x, err = propagateVec(d, x)
		assert.NoError(err)

		y, err := d.Observe(x, nil, nil)
		assert.NoError(err)
		assert.InDelta(0.5*g*float64(i)*float64(i), y.AtVec(0), 1e-9)
	}
}

func propagateVec(d *Discrete, x mat.Vector) (*mat.VecDense, error) {
	next, err := d.Propagate(x, nil, nil)
	if err != nil {
		return nil, err
	}

	out := mat.NewVecDense(next.Len(), nil)
	out.CloneFromVec(next)
	return out, nil
}

func TestObserveWithNoise(t *testing.T) {
	assert := assert.New(t)

	d := newFall(t)
	x := mat.NewVecDense(3, []float64{10, 5, 9.81})

	// zero noise leaves the observation exact
	zn, err := noise.NewZero(1)
	assert.NoError(err)

	y, err := d.Observe(x, nil, zn.Sample())
	assert.NoError(err)
	assert.InDelta(10, y.AtVec(0), 1e-12)

	// gaussian noise perturbs it
	gn, err := noise.NewGaussian([]float64{0}, mat.NewSymDense(1, []float64{0.5}))
	assert.NoError(err)

	y, err = d.Observe(x, nil, gn.Sample())
	assert.NoError(err)
	assert.Equal(1, y.Len())
}

func TestPropagateInvalid(t *testing.T) {
	assert := assert.New(t)

	d := newFall(t)

	_, err := d.Propagate(mat.NewVecDense(2, nil), nil, nil)
	assert.Error(err)

	_, err = d.Observe(mat.NewVecDense(2, nil), nil, nil)
	assert.Error(err)
}

func TestNew2DPlot(t *testing.T) {
	assert := assert.New(t)

	model := mat.NewDense(10, 2, nil)
	meas := mat.NewDense(10, 2, nil)
	filter := mat.NewDense(10, 2, nil)

	p, err := New2DPlot(model, meas, filter)
	assert.NotNil(p)
	assert.NoError(err)

	p, err = New2DPlot(nil, meas, filter)
	assert.Nil(p)
	assert.Error(err)

	p, err = New2DPlot(mat.NewDense(10, 1, nil), meas, filter)
	assert.Nil(p)
	assert.Error(err)
}
