package risk

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTrainOptions() TrainOptions {
	opts := DefaultTrainOptions()
	opts.Trees = 10
	opts.Samples = 300
	return opts
}

func TestMockDataset_Ranges(t *testing.T) {
	x, y := MockDataset(500, rand.New(rand.NewPCG(1, 1)))
	require.Len(t, x, 500)
	require.Len(t, y, 500)

	for i, v := range x {
		assert.GreaterOrEqual(t, v[0], 20.0)
		assert.LessOrEqual(t, v[0], 90.0)
		assert.GreaterOrEqual(t, v[1], 70.0)
		assert.Less(t, v[1], 300.0)
		assert.GreaterOrEqual(t, v[2], 15.0)
		assert.Less(t, v[2], 50.0)
		for j := 3; j < VectorSize; j++ {
			assert.Contains(t, []float64{0, 1}, v[j])
		}
		assert.Contains(t, []int{0, 1}, y[i])
	}
}

func TestTrainMock_ProducesValidForest(t *testing.T) {
	forest, err := TrainMock(smallTrainOptions())
	require.NoError(t, err)
	require.NoError(t, forest.Validate())
	assert.Len(t, forest.Trees, 10)
}

func TestTrainMock_DeterministicForSeed(t *testing.T) {
	a, err := TrainMock(smallTrainOptions())
	require.NoError(t, err)
	b, err := TrainMock(smallTrainOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTrain_FitsTrainingData(t *testing.T) {
	opts := smallTrainOptions()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	x, y := MockDataset(opts.Samples, rng)

	forest, err := Train(x, y, opts, rng)
	require.NoError(t, err)

	correct := 0
	for i := range x {
		if int(forest.Predict(x[i])) == y[i] {
			correct++
		}
	}
	assert.Greater(t, float64(correct)/float64(len(x)), 0.8)
}

func TestTrain_RejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	_, err := Train(nil, nil, DefaultTrainOptions(), rng)
	assert.Error(t, err)

	_, err = Train([]Vector{{}}, []int{0, 1}, DefaultTrainOptions(), rng)
	assert.Error(t, err)

	opts := DefaultTrainOptions()
	opts.Trees = 0
	_, err = Train([]Vector{{}}, []int{0}, opts, rng)
	assert.Error(t, err)
}
