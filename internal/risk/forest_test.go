package risk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stump splits on a single feature: x[feature] <= threshold → low class.
func stump(feature int, threshold float64, low, high int) Tree {
	return Tree{Nodes: []Node{
		{Feature: feature, Threshold: threshold, Left: 1, Right: 2},
		{Leaf: true, Class: low},
		{Leaf: true, Class: high},
	}}
}

func testForest() *Forest {
	return &Forest{
		Version:  ForestFormatVersion,
		Features: FeatureNames[:],
		Trees: []Tree{
			stump(0, 60, 0, 1),  // age
			stump(1, 200, 0, 1), // glucose
			stump(5, 0.5, 0, 1), // heart disease
		},
	}
}

func TestForest_MajorityVote(t *testing.T) {
	f := testForest()
	require.NoError(t, f.Validate())

	assert.Equal(t, domain.NoRisk, f.Predict(Encode(domain.PatientFeatures{Age: 40, AvgGlucose: 90})))
	assert.Equal(t, domain.NoRisk, f.Predict(Encode(domain.PatientFeatures{Age: 70, AvgGlucose: 90})))
	assert.Equal(t, domain.HasRisk, f.Predict(Encode(domain.PatientFeatures{Age: 70, AvgGlucose: 250})))
	assert.Equal(t, domain.HasRisk, f.Predict(Encode(domain.PatientFeatures{Age: 30, AvgGlucose: 250, HeartDisease: 1})))
}

func TestForest_TieClassifiesAsRisk(t *testing.T) {
	f := &Forest{
		Version:  ForestFormatVersion,
		Features: FeatureNames[:],
		Trees:    []Tree{stump(0, 60, 0, 1), stump(1, 200, 0, 1)},
	}
	assert.Equal(t, domain.HasRisk, f.Predict(Encode(domain.PatientFeatures{Age: 70, AvgGlucose: 90})))
}

func TestForest_ValidateRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Forest)
		errMsg string
	}{
		{"wrong version", func(f *Forest) { f.Version = 2 }, "unsupported forest version"},
		{"short feature list", func(f *Forest) { f.Features = f.Features[:14] }, "want 15"},
		{"reordered features", func(f *Forest) {
			f.Features = append([]string{}, f.Features...)
			f.Features[0], f.Features[1] = f.Features[1], f.Features[0]
		}, "feature 0"},
		{"no trees", func(f *Forest) { f.Trees = nil }, "no trees"},
		{"empty tree", func(f *Forest) { f.Trees[0].Nodes = nil }, "is empty"},
		{"feature out of range", func(f *Forest) { f.Trees[0].Nodes[0].Feature = 15 }, "out of range"},
		{"child points backwards", func(f *Forest) { f.Trees[0].Nodes[0].Left = 0 }, "child index"},
		{"child past end", func(f *Forest) { f.Trees[0].Nodes[0].Right = 3 }, "child index"},
		{"bad leaf class", func(f *Forest) { f.Trees[0].Nodes[1].Class = 2 }, "invalid class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testForest()
			tt.mutate(f)
			err := f.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForest_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, testForest().Save(path))

	loaded, err := LoadForest(path)
	require.NoError(t, err)
	assert.Equal(t, testForest(), loaded)
}

func TestDecodeForest_InvalidJSON(t *testing.T) {
	_, err := DecodeForest(strings.NewReader(`{"version":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode forest")
}

func TestNew(t *testing.T) {
	t.Run("rules", func(t *testing.T) {
		e, err := New(StrategyRules, "")
		require.NoError(t, err)
		assert.Equal(t, StrategyRules, e.Name())
	})

	t.Run("forest from artifact", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, testForest().Save(path))

		e, err := New(StrategyForest, path)
		require.NoError(t, err)
		assert.Equal(t, StrategyForest, e.Name())

		outcome, err := e.Predict(domain.PatientFeatures{Age: 70, AvgGlucose: 250})
		require.NoError(t, err)
		assert.Equal(t, domain.HasRisk, outcome)
	})

	t.Run("forest with missing artifact", func(t *testing.T) {
		_, err := New(StrategyForest, filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := New("magic", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown strategy")
	})
}
