package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/attaboy/strokecheck/internal/domain"
)

// ForestFormatVersion is the artifact version written by Save.
const ForestFormatVersion = 1

// Node is one decision tree node. Internal nodes send x[Feature] <= Threshold
// to Left and everything else to Right. Leaves carry the predicted Class.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Class     int     `json:"class,omitempty"`
}

// Tree is a flat, pre-ordered decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is a majority-vote ensemble of decision trees.
type Forest struct {
	Version  int      `json:"version"`
	Features []string `json:"features"`
	Trees    []Tree   `json:"trees"`
}

// LoadForest reads and validates a forest artifact from path.
func LoadForest(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeForest(f)
}

// DecodeForest reads and validates a forest artifact.
func DecodeForest(r io.Reader) (*Forest, error) {
	var forest Forest
	if err := json.NewDecoder(r).Decode(&forest); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	if err := forest.Validate(); err != nil {
		return nil, err
	}
	return &forest, nil
}

// Save writes the forest to path through a temp file and rename.
func (m *Forest) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(m); err != nil {
		tmp.Close()
		return fmt.Errorf("encode forest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Validate checks the artifact matches the encoder layout and that every
// tree is well formed. Children must come after their parent, which rules
// out cycles.
func (m *Forest) Validate() error {
	if m.Version != ForestFormatVersion {
		return fmt.Errorf("unsupported forest version %d", m.Version)
	}
	if len(m.Features) != VectorSize {
		return fmt.Errorf("forest has %d features, want %d", len(m.Features), VectorSize)
	}
	for i, name := range m.Features {
		if name != FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, name, FeatureNames[i])
		}
	}
	if len(m.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for t, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", t)
		}
		for i, n := range tree.Nodes {
			if n.Leaf {
				if n.Class != 0 && n.Class != 1 {
					return fmt.Errorf("tree %d node %d: invalid class %d", t, i, n.Class)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= VectorSize {
				return fmt.Errorf("tree %d node %d: feature %d out of range", t, i, n.Feature)
			}
			if n.Left <= i || n.Left >= len(tree.Nodes) || n.Right <= i || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", t, i)
			}
		}
	}
	return nil
}

// Predict returns the majority vote of all trees. Ties classify as risk.
func (m *Forest) Predict(v Vector) domain.Outcome {
	votes := 0
	for _, tree := range m.Trees {
		votes += tree.classify(v)
	}
	if 2*votes >= len(m.Trees) {
		return domain.HasRisk
	}
	return domain.NoRisk
}

func (t Tree) classify(v Vector) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Class
		}
		if v[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ForestEvaluator classifies with a loaded Forest. The forest is never
// mutated, so one evaluator may serve concurrent requests.
type ForestEvaluator struct {
	forest *Forest
}

// NewForestEvaluator wraps a validated forest.
func NewForestEvaluator(forest *Forest) *ForestEvaluator {
	return &ForestEvaluator{forest: forest}
}

func (e *ForestEvaluator) Name() string { return StrategyForest }

// Predict encodes f and runs the forest.
func (e *ForestEvaluator) Predict(f domain.PatientFeatures) (domain.Outcome, error) {
	return e.forest.Predict(Encode(f)), nil
}
