// Package distrib maps file indexes to archive folder numbers.
//
// Three algorithms are supported: proportional (even split), exponential
// (skewed toward low-numbered folders), and gaussian (bell curve centered on
// the middle folder). All three are pure functions of their inputs plus, for
// the randomized algorithms, the supplied random source.
package distrib

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/haybale/chaff/types"
)

// exponentialSpread controls how steeply the exponential algorithm favors
// low-numbered folders: an ExpFloat64 draw (mean 1) is scaled so roughly
// 95% of assignments land in the first third of the folder range.
const exponentialSpread = 3.0

// FolderNumber maps a 1-based file index to a folder number in
// [1, folderCount].
//
// rng drives the exponential and gaussian draws. Passing the same seeded
// *rand.Rand reproduces identical assignments across runs; nil falls back to
// the process-wide source and gives no reproducibility guarantee. The
// proportional algorithm ignores rng entirely.
func FolderNumber(index, totalFiles int64, folderCount int, algo types.Distribution, rng *rand.Rand) (int, error) {
	if folderCount < 1 {
		return 0, fmt.Errorf("%w: %d", types.ErrInvalidFolderCount, folderCount)
	}
	if folderCount == 1 {
		return 1, nil
	}

	switch algo {
	case types.DistributionProportional:
		return proportional(index, totalFiles, folderCount), nil
	case types.DistributionExponential:
		return exponential(folderCount, rng), nil
	case types.DistributionGaussian:
		return gaussian(folderCount, rng), nil
	default:
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidDistribution, algo)
	}
}

// proportional splits files evenly: ceil(index * folderCount / totalFiles),
// clamped to the valid range.
func proportional(index, totalFiles int64, folderCount int) int {
	if totalFiles < 1 {
		return 1
	}
	folder := int((index*int64(folderCount) + totalFiles - 1) / totalFiles)
	return clamp(folder, folderCount)
}

// exponential skews assignment toward low-numbered folders using an
// exponential draw.
func exponential(folderCount int, rng *rand.Rand) int {
	draw := expFloat(rng)
	folder := 1 + int(draw/exponentialSpread*float64(folderCount))
	return clamp(folder, folderCount)
}

// gaussian assigns folders on a bell curve: mean folderCount/2, standard
// deviation folderCount/6, so about 99.7% of the mass falls inside the valid
// range before clamping.
func gaussian(folderCount int, rng *rand.Rand) int {
	p := float64Draw(rng)
	z := InverseNormalCDF(p)

	mean := float64(folderCount) / 2
	stdDev := float64(folderCount) / 6
	folder := int(math.Round(mean + stdDev*z))
	return clamp(folder, folderCount)
}

func clamp(folder, folderCount int) int {
	if folder < 1 {
		return 1
	}
	if folder > folderCount {
		return folderCount
	}
	return folder
}

func expFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.ExpFloat64()
	}
	return rng.ExpFloat64()
}

func float64Draw(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
