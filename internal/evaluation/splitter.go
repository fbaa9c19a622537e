package evaluation

import (
	"fmt"
	"math/rand"
	"sort"
)

// Split is one cross-validation partition: indices for training and for
// the held-out fold.
type Split struct {
	Train []int
	Test  []int
}

type KFoldSplitter struct {
	nFolds  int
	shuffle bool
	seed    int64
}

func NewKFoldSplitter(nFolds int, shuffle bool, seed int64) *KFoldSplitter {
	return &KFoldSplitter{
		nFolds:  nFolds,
		shuffle: shuffle,
		seed:    seed,
	}
}

func (kfs *KFoldSplitter) Split(n int) ([]Split, error) {
	if kfs.nFolds < 2 || kfs.nFolds > n {
		return nil, fmt.Errorf("number of folds must be between 2 and %d, got %d", n, kfs.nFolds)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if kfs.shuffle {
		rng := rand.New(rand.NewSource(kfs.seed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	return buildSplits(indices, assignContiguous(n, kfs.nFolds)), nil
}

// StratifiedKFoldSplitter keeps each fold's class proportions close to the
// full dataset's by dealing every class's samples across folds in turn.
type StratifiedKFoldSplitter struct {
	nFolds  int
	shuffle bool
	seed    int64
}

func NewStratifiedKFoldSplitter(nFolds int, shuffle bool, seed int64) *StratifiedKFoldSplitter {
	return &StratifiedKFoldSplitter{
		nFolds:  nFolds,
		shuffle: shuffle,
		seed:    seed,
	}
}

func (skf *StratifiedKFoldSplitter) Split(y []int) ([]Split, error) {
	n := len(y)
	if skf.nFolds < 2 || skf.nFolds > n {
		return nil, fmt.Errorf("number of folds must be between 2 and %d, got %d", n, skf.nFolds)
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(skf.seed))
	foldIndices := make([][]int, skf.nFolds)

	for _, class := range classes {
		indices := classIndices[class]
		if skf.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
		for k, idx := range indices {
			fold := k % skf.nFolds
			foldIndices[fold] = append(foldIndices[fold], idx)
		}
	}

	splits := make([]Split, skf.nFolds)
	for fold := 0; fold < skf.nFolds; fold++ {
		test := foldIndices[fold]
		train := make([]int, 0, n-len(test))
		for other := 0; other < skf.nFolds; other++ {
			if other != fold {
				train = append(train, foldIndices[other]...)
			}
		}
		sort.Ints(train)
		sort.Ints(test)
		splits[fold] = Split{Train: train, Test: test}
	}

	return splits, nil
}

// assignContiguous carves n samples into nFolds contiguous test ranges,
// with the last fold absorbing the remainder.
func assignContiguous(n, nFolds int) [][2]int {
	ranges := make([][2]int, nFolds)
	foldSize := n / nFolds
	for fold := 0; fold < nFolds; fold++ {
		start := fold * foldSize
		end := start + foldSize
		if fold == nFolds-1 {
			end = n
		}
		ranges[fold] = [2]int{start, end}
	}
	return ranges
}

func buildSplits(indices []int, ranges [][2]int) []Split {
	splits := make([]Split, len(ranges))
	for fold, r := range ranges {
		test := make([]int, r[1]-r[0])
		copy(test, indices[r[0]:r[1]])

		train := make([]int, 0, len(indices)-len(test))
		train = append(train, indices[:r[0]]...)
		train = append(train, indices[r[1]:]...)

		splits[fold] = Split{Train: train, Test: test}
	}
	return splits
}

// HoldoutSplit returns a stratified train/test index partition with
// roughly testSize of every class held out. Each class contributes at
// least one test sample.
func HoldoutSplit(y []int, testSize float64, seed int64) (train, test []int, err error) {
	if len(y) == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1")
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, class := range classes {
		indices := classIndices[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(float64(len(indices)) * testSize)
		if testCount == 0 {
			testCount = 1
		}

		trainCount := len(indices) - testCount
		train = append(train, indices[:trainCount]...)
		test = append(test, indices[trainCount:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}
