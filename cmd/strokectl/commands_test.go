package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/attaboy/strokecheck/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var highRiskArgs = []string{
	"--age", "70", "--avg_glucose_level", "210", "--bmi", "32", "--gender", "1",
	"--hypertension", "1", "--disease", "1", "--married", "1", "--work", "2",
	"--residence", "1", "--smoking", "3",
}

var lowRiskArgs = []string{
	"--age", "25", "--avg_glucose_level", "85", "--bmi", "22", "--gender", "0",
	"--hypertension", "0", "--disease", "0", "--married", "0", "--work", "2",
	"--residence", "0", "--smoking", "2",
}

func TestScore_Rules(t *testing.T) {
	out, err := execute(t, append([]string{"score"}, highRiskArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, domain.MessageHasRisk)
	assert.Contains(t, out, "threshold 5")
	assert.Contains(t, out, "age_over_65")

	out, err = execute(t, append([]string{"score"}, lowRiskArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, domain.MessageNoRisk)
	assert.Contains(t, out, "score: 0")
}

func TestScore_MissingField(t *testing.T) {
	out, err := execute(t, "score", "--age", "70")
	require.Error(t, err)
	assert.Contains(t, out, `missing field "avg_glucose_level"`)
}

func TestScore_StrictRange(t *testing.T) {
	args := append([]string{"score", "--strict"}, lowRiskArgs...)
	args = append(args, "--age", "200")
	_, err := execute(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age must be at most 120")
}

func TestTrainThenScoreForest(t *testing.T) {
	model := filepath.Join(t.TempDir(), "model.json")

	out, err := execute(t, "train", "--out", model, "--trees", "3", "--samples", "200", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote forest with 3 trees")

	forest, err := risk.LoadForest(model)
	require.NoError(t, err)
	assert.Len(t, forest.Trees, 3)

	out, err = execute(t, append([]string{"score", "--strategy", "forest", "--model", model}, highRiskArgs...)...)
	require.NoError(t, err)
	assert.NotContains(t, out, "score:")
}

func TestScore_MissingModel(t *testing.T) {
	_, err := execute(t, append([]string{"score", "--strategy", "forest", "--model",
		filepath.Join(t.TempDir(), "absent.json")}, highRiskArgs...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load model")
}

func TestTrain_InvalidOptions(t *testing.T) {
	_, err := execute(t, "train", "--out", filepath.Join(t.TempDir(), "m.json"), "--trees", "0")
	assert.Error(t, err)
}
