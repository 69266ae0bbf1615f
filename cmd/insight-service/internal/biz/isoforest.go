package biz

import (
	"math"
	"math/rand"
	"sort"
)

// 隔离森林：随机划分树的集成，离群点平均更早被隔离。
// 评分约定与 sklearn 对齐：ScoreSamples 为负值，越小越异常；
// DecisionFunction 减去污染率分位的偏移量，小于 0 即判为离群。

const (
	defaultSubsampleSize = 256
	eulerGamma           = 0.5772156649015329
)

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int // 外部节点承载的样本数
}

func (n *isoNode) external() bool {
	return n.left == nil
}

// IsolationForest 固定种子的隔离森林，保证结果可复现
type IsolationForest struct {
	treeCount int
	seed      int64
	trees     []*isoNode
	psi       int
}

// NewIsolationForest 创建隔离森林
func NewIsolationForest(treeCount int, seed int64) *IsolationForest {
	if treeCount <= 0 {
		treeCount = 200
	}
	return &IsolationForest{treeCount: treeCount, seed: seed}
}

// Fit 在样本矩阵上训练
func (f *IsolationForest) Fit(x [][]float64) {
	n := len(x)
	f.psi = n
	if f.psi > defaultSubsampleSize {
		f.psi = defaultSubsampleSize
	}

	rng := rand.New(rand.NewSource(f.seed))
	heightLimit := int(math.Ceil(math.Log2(math.Max(float64(f.psi), 2))))

	f.trees = make([]*isoNode, 0, f.treeCount)
	for i := 0; i < f.treeCount; i++ {
		indices := sampleIndices(rng, n, f.psi)
		f.trees = append(f.trees, buildTree(x, indices, 0, heightLimit, rng))
	}
}

// ScoreSamples 返回每个样本的异常得分，范围 [-1, 0)，越小越异常。
// 拟合样本不足 2 条时没有隔离深度可言，一律给中性得分。
func (f *IsolationForest) ScoreSamples(x [][]float64) []float64 {
	scores := make([]float64, len(x))
	cPsi := avgPathAdjustment(f.psi)
	if cPsi == 0 {
		for i := range scores {
			scores[i] = -0.5
		}
		return scores
	}
	for i, row := range x {
		var sum float64
		for _, tree := range f.trees {
			sum += pathLength(row, tree, 0)
		}
		mean := sum / float64(len(f.trees))
		scores[i] = -math.Pow(2, -mean/cPsi)
	}
	return scores
}

// DecisionFunction 按污染率把得分平移：负值为离群点
func (f *IsolationForest) DecisionFunction(x [][]float64, contamination float64) []float64 {
	scores := f.ScoreSamples(x)
	offset := quantile(scores, contamination)
	decisions := make([]float64, len(scores))
	for i, s := range scores {
		decisions[i] = s - offset
	}
	return decisions
}

func sampleIndices(rng *rand.Rand, n, k int) []int {
	if k >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	perm := rng.Perm(n)
	return perm[:k]
}

func buildTree(x [][]float64, indices []int, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(indices) <= 1 {
		return &isoNode{size: len(indices)}
	}

	// 只在有取值跨度的特征里随机选
	dims := len(x[indices[0]])
	candidates := make([]int, 0, dims)
	for d := 0; d < dims; d++ {
		lo, hi := x[indices[0]][d], x[indices[0]][d]
		for _, i := range indices[1:] {
			v := x[i][d]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi > lo {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return &isoNode{size: len(indices)}
	}

	feature := candidates[rng.Intn(len(candidates))]
	lo, hi := x[indices[0]][feature], x[indices[0]][feature]
	for _, i := range indices[1:] {
		v := x[i][feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right []int
	for _, i := range indices {
		if x[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildTree(x, left, depth+1, limit, rng),
		right:   buildTree(x, right, depth+1, limit, rng),
	}
}

func pathLength(row []float64, node *isoNode, depth float64) float64 {
	if node.external() {
		return depth + avgPathAdjustment(node.size)
	}
	if row[node.feature] < node.split {
		return pathLength(row, node.left, depth+1)
	}
	return pathLength(row, node.right, depth+1)
}

// avgPathAdjustment 二叉搜索失败路径的平均长度 c(n)
func avgPathAdjustment(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}

// quantile 线性插值分位数，q 取 [0,1]
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
