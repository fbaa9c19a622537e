package evaluation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPartition(t *testing.T, splits []Split, n int) {
	t.Helper()

	seen := make(map[int]int)
	for _, split := range splits {
		for _, idx := range split.Test {
			seen[idx]++
		}
		// Train and test are disjoint within a split.
		inTest := make(map[int]bool, len(split.Test))
		for _, idx := range split.Test {
			inTest[idx] = true
		}
		for _, idx := range split.Train {
			assert.False(t, inTest[idx], "index %d in both train and test", idx)
		}
		assert.Equal(t, n, len(split.Train)+len(split.Test))
	}

	require.Len(t, seen, n, "every index must appear in exactly one test fold")
	for idx, count := range seen {
		assert.Equal(t, 1, count, "index %d appears in %d test folds", idx, count)
	}
}

func TestKFoldSplitterPartition(t *testing.T) {
	splits, err := NewKFoldSplitter(4, true, 42).Split(22)
	require.NoError(t, err)
	require.Len(t, splits, 4)
	assertPartition(t, splits, 22)
}

func TestKFoldSplitterNoShuffleContiguous(t *testing.T) {
	splits, err := NewKFoldSplitter(2, false, 0).Split(4)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, splits[0].Test)
	assert.Equal(t, []int{2, 3}, splits[0].Train)
	assert.Equal(t, []int{2, 3}, splits[1].Test)
	assert.Equal(t, []int{0, 1}, splits[1].Train)
}

func TestKFoldSplitterErrors(t *testing.T) {
	_, err := NewKFoldSplitter(1, false, 0).Split(10)
	assert.Error(t, err)

	_, err = NewKFoldSplitter(11, false, 0).Split(10)
	assert.Error(t, err)
}

func TestStratifiedKFoldKeepsClassBalance(t *testing.T) {
	// 40 samples, 3:1 class ratio.
	y := make([]int, 40)
	for i := range y {
		if i%4 == 0 {
			y[i] = 1
		}
	}

	splits, err := NewStratifiedKFoldSplitter(5, true, 7).Split(y)
	require.NoError(t, err)
	require.Len(t, splits, 5)
	assertPartition(t, splits, len(y))

	for fold, split := range splits {
		positives := 0
		for _, idx := range split.Test {
			if y[idx] == 1 {
				positives++
			}
		}
		assert.Equal(t, 2, positives, "fold %d should hold 2 of the 10 positives", fold)
	}
}

func TestStratifiedKFoldDeterministic(t *testing.T) {
	y := make([]int, 30)
	for i := range y {
		y[i] = i % 3
	}

	first, err := NewStratifiedKFoldSplitter(3, true, 99).Split(y)
	require.NoError(t, err)
	second, err := NewStratifiedKFoldSplitter(3, true, 99).Split(y)
	require.NoError(t, err)

	for fold := range first {
		assert.Equal(t, first[fold].Test, second[fold].Test)
		assert.Equal(t, first[fold].Train, second[fold].Train)
	}
}

func TestStratifiedKFoldErrors(t *testing.T) {
	_, err := NewStratifiedKFoldSplitter(5, false, 0).Split([]int{0, 1})
	assert.Error(t, err)
}

func TestHoldoutSplitStratified(t *testing.T) {
	y := make([]int, 50)
	for i := range y {
		y[i] = i % 2
	}

	train, test, err := HoldoutSplit(y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 10)
	assert.Len(t, train, 40)

	testPositives := 0
	for _, idx := range test {
		if y[idx] == 1 {
			testPositives++
		}
	}
	assert.Equal(t, 5, testPositives)

	all := append(append([]int{}, train...), test...)
	sort.Ints(all)
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}
}

func TestHoldoutSplitMinorityGetsOneTestSample(t *testing.T) {
	// 3 minority samples at 10% would round to zero; each class still
	// contributes at least one test sample.
	y := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}
	_, test, err := HoldoutSplit(y, 0.1, 1)
	require.NoError(t, err)

	minority := 0
	for _, idx := range test {
		if y[idx] == 1 {
			minority++
		}
	}
	assert.GreaterOrEqual(t, minority, 1)
}

func TestHoldoutSplitErrors(t *testing.T) {
	_, _, err := HoldoutSplit(nil, 0.2, 0)
	assert.Error(t, err)

	_, _, err = HoldoutSplit([]int{0, 1}, 0, 0)
	assert.Error(t, err)

	_, _, err = HoldoutSplit([]int{0, 1}, 1, 0)
	assert.Error(t, err)
}
