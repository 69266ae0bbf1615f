package biz

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusterWithOutlier 紧密簇加一个远端离群点，离群点在最后一行
func clusterWithOutlier() [][]float64 {
	rng := rand.New(rand.NewSource(7))
	matrix := make([][]float64, 0, 41)
	for i := 0; i < 40; i++ {
		matrix = append(matrix, []float64{
			10 + rng.Float64(),
			20 + rng.Float64(),
			5 + rng.Float64(),
		})
	}
	matrix = append(matrix, []float64{50, 90, 40})
	return matrix
}

func TestIsolationForestScoresAreNegative(t *testing.T) {
	matrix := clusterWithOutlier()

	forest := NewIsolationForest(100, 42)
	forest.Fit(matrix)
	scores := forest.ScoreSamples(matrix)

	require.Len(t, scores, len(matrix))
	for i, s := range scores {
		assert.Less(t, s, 0.0, "row %d", i)
		assert.Greater(t, s, -1.0, "row %d", i)
	}
}

func TestIsolationForestOutlierScoresLowest(t *testing.T) {
	matrix := clusterWithOutlier()

	forest := NewIsolationForest(100, 42)
	forest.Fit(matrix)
	scores := forest.ScoreSamples(matrix)

	outlier := scores[len(scores)-1]
	for i := 0; i < len(scores)-1; i++ {
		assert.Less(t, outlier, scores[i], "outlier should score below inlier %d", i)
	}
}

func TestIsolationForestDeterministicWithSameSeed(t *testing.T) {
	matrix := clusterWithOutlier()

	a := NewIsolationForest(100, 42)
	a.Fit(matrix)
	b := NewIsolationForest(100, 42)
	b.Fit(matrix)

	assert.Equal(t, a.ScoreSamples(matrix), b.ScoreSamples(matrix))
}

func TestScoreSamplesSingleSampleFit(t *testing.T) {
	matrix := [][]float64{{1, 2, 3}}

	forest := NewIsolationForest(100, 42)
	forest.Fit(matrix)
	scores := forest.ScoreSamples(matrix)

	// 单样本拟合给中性得分而非 NaN
	require.Len(t, scores, 1)
	assert.False(t, math.IsNaN(scores[0]))
	assert.Equal(t, -0.5, scores[0])
}

func TestDecisionFunctionOffsetsByContamination(t *testing.T) {
	matrix := clusterWithOutlier()

	forest := NewIsolationForest(100, 42)
	forest.Fit(matrix)
	decisions := forest.DecisionFunction(matrix, 0.1)

	// 离群点必须落在负区
	assert.Less(t, decisions[len(decisions)-1], 0.0)

	negatives := 0
	for _, d := range decisions {
		if d < 0 {
			negatives++
		}
	}
	// 污染率 0.1，41 行里负区样本数应远小于总量
	assert.LessOrEqual(t, negatives, 8)
}

func TestQuantileInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, quantile(values, 0))
	assert.Equal(t, 4.0, quantile(values, 1))
	assert.Equal(t, 2.5, quantile(values, 0.5))
	assert.Equal(t, 0.0, quantile(nil, 0.5))
}

func TestAvgPathAdjustment(t *testing.T) {
	assert.Equal(t, 0.0, avgPathAdjustment(0))
	assert.Equal(t, 0.0, avgPathAdjustment(1))
	assert.Equal(t, 1.0, avgPathAdjustment(2))
	// c(n) 随 n 单调增
	assert.Greater(t, avgPathAdjustment(100), avgPathAdjustment(10))
}
