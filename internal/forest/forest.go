// Package forest implements a seeded random-forest binary classifier.
//
// Trees are grown on bootstrap samples with gini-impurity splits and a
// sqrt(features) subsample per split; the forest's fraud probability is the
// mean of per-tree positive-class leaf fractions. Fitting with a fixed seed
// is fully deterministic.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Config controls forest fitting.
type Config struct {
	NumTrees int
	MaxDepth int
	Seed     int64
}

// DefaultConfig matches the dashboard's training setup: 20 shallow trees,
// reproducible across runs.
func DefaultConfig() Config {
	return Config{NumTrees: 20, MaxDepth: 10, Seed: 42}
}

// ErrSingleClass is returned when the label column is degenerate; a
// one-class training set cannot produce a usable binary classifier.
var ErrSingleClass = errors.New("forest: labels contain fewer than two classes")

// Forest is a fitted ensemble. The zero value is not usable; obtain one
// from Fit.
type Forest struct {
	trees []*node
}

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	prob      float64 // positive-class fraction; leaf iff left == nil
}

// Fit trains a forest on the feature matrix and 0/1 labels.
func Fit(features [][]float64, labels []int, cfg Config) (*Forest, error) {
	if len(features) == 0 {
		return nil, errors.New("forest: empty training set")
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("forest: %d feature rows but %d labels", len(features), len(labels))
	}

	positives := 0
	for _, y := range labels {
		if y != 0 {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return nil, ErrSingleClass
	}

	if cfg.NumTrees <= 0 {
		cfg.NumTrees = DefaultConfig().NumTrees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	numFeatures := len(features[0])
	mtry := int(math.Sqrt(float64(numFeatures)))
	if mtry < 1 {
		mtry = 1
	}

	f := &Forest{trees: make([]*node, 0, cfg.NumTrees)}
	n := len(features)
	for i := 0; i < cfg.NumTrees; i++ {
		sample := make([]int, n)
		for j := range sample {
			sample[j] = rng.Intn(n)
		}
		f.trees = append(f.trees, grow(features, labels, sample, cfg.MaxDepth, mtry, rng))
	}
	return f, nil
}

// PredictProba returns the estimated positive-class probability for one
// feature vector.
func (f *Forest) PredictProba(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, root := range f.trees {
		nd := root
		for nd.left != nil {
			if x[nd.feature] <= nd.threshold {
				nd = nd.left
			} else {
				nd = nd.right
			}
		}
		sum += nd.prob
	}
	return sum / float64(len(f.trees))
}

// Predict returns the class label; probabilities of 0.5 and above map to 1.
func (f *Forest) Predict(x []float64) int {
	if f.PredictProba(x) >= 0.5 {
		return 1
	}
	return 0
}

// NumTrees returns the ensemble size.
func (f *Forest) NumTrees() int {
	return len(f.trees)
}

func grow(X [][]float64, y []int, idx []int, depth, mtry int, rng *rand.Rand) *node {
	n := len(idx)
	pos := 0
	for _, i := range idx {
		if y[i] != 0 {
			pos++
		}
	}
	nd := &node{prob: float64(pos) / float64(n)}

	if depth <= 0 || pos == 0 || pos == n || n < 2 {
		return nd
	}

	feat, thr, ok := bestSplit(X, y, idx, mtry, rng)
	if !ok {
		return nd
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return nd
	}

	nd.feature = feat
	nd.threshold = thr
	nd.left = grow(X, y, left, depth-1, mtry, rng)
	nd.right = grow(X, y, right, depth-1, mtry, rng)
	return nd
}

type valLabel struct {
	val   float64
	label int
}

// bestSplit evaluates candidate thresholds on a random subset of features
// and returns the one minimizing weighted gini impurity.
func bestSplit(X [][]float64, y []int, idx []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	bestGini := math.Inf(1)
	bestFeat := 0
	bestThr := 0.0
	found := false

	order := rng.Perm(len(X[0]))
	if mtry < len(order) {
		order = order[:mtry]
	}

	pairs := make([]valLabel, len(idx))
	for _, feat := range order {
		totalPos := 0
		for k, i := range idx {
			pairs[k] = valLabel{val: X[i][feat], label: y[i]}
			if y[i] != 0 {
				totalPos++
			}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].val < pairs[b].val })

		leftN, leftPos := 0, 0
		for k := 0; k < len(pairs)-1; k++ {
			leftN++
			if pairs[k].label != 0 {
				leftPos++
			}
			if pairs[k].val == pairs[k+1].val {
				continue
			}
			thr := (pairs[k].val + pairs[k+1].val) / 2
			g := weightedGini(leftPos, leftN, totalPos-leftPos, len(pairs)-leftN)
			if g < bestGini {
				bestGini = g
				bestFeat = feat
				bestThr = thr
				found = true
			}
		}
	}
	return bestFeat, bestThr, found
}

func giniImpurity(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

func weightedGini(leftPos, leftN, rightPos, rightN int) float64 {
	n := float64(leftN + rightN)
	return float64(leftN)/n*giniImpurity(leftPos, leftN) +
		float64(rightN)/n*giniImpurity(rightPos, rightN)
}
