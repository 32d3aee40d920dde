package distrib_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/haybale/chaff/distrib"
	"github.com/haybale/chaff/types"
)

func TestFolderNumber_RangeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	algos := []types.Distribution{
		types.DistributionProportional,
		types.DistributionExponential,
		types.DistributionGaussian,
	}

	for _, algo := range algos {
		for _, folderCount := range []int{1, 2, 5, 100} {
			const totalFiles = int64(500)
			for index := int64(1); index <= totalFiles; index++ {
				folder, err := distrib.FolderNumber(index, totalFiles, folderCount, algo, rng)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", algo, err)
				}
				if folder < 1 || folder > folderCount {
					t.Fatalf("%s: folder %d out of range [1, %d] for index %d", algo, folder, folderCount, index)
				}
			}
		}
	}
}

func TestFolderNumber_SingleFolderShortCircuit(t *testing.T) {
	folder, err := distrib.FolderNumber(42, 100, 1, types.DistributionGaussian, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folder != 1 {
		t.Errorf("expected folder 1, got %d", folder)
	}
}

func TestFolderNumber_ProportionalSplit(t *testing.T) {
	// 10 files over 5 folders: indexes 1-2 -> folder 1, 3-4 -> folder 2, etc.
	for index := int64(1); index <= 10; index++ {
		folder, err := distrib.FolderNumber(index, 10, 5, types.DistributionProportional, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := int((index + 1) / 2)
		if folder != want {
			t.Errorf("index %d: expected folder %d, got %d", index, want, folder)
		}
	}
}

func TestFolderNumber_InvalidAlgorithm(t *testing.T) {
	if _, err := distrib.FolderNumber(1, 10, 5, types.Distribution("zipf"), nil); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestFolderNumber_InvalidFolderCount(t *testing.T) {
	if _, err := distrib.FolderNumber(1, 10, 0, types.DistributionProportional, nil); err == nil {
		t.Fatal("expected error for folder count 0")
	}
}

func TestFolderNumber_GaussianOccupancyShape(t *testing.T) {
	const (
		folderCount = 10
		totalFiles  = int64(20000)
	)
	rng := rand.New(rand.NewSource(99))

	counts := make([]int, folderCount+1)
	for index := int64(1); index <= totalFiles; index++ {
		folder, err := distrib.FolderNumber(index, totalFiles, folderCount, types.DistributionGaussian, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[folder]++
	}

	// Center folders must dominate the tails on a bell curve.
	center := counts[5] + counts[6]
	tails := counts[1] + counts[10]
	if center <= tails*2 {
		t.Errorf("expected center-heavy occupancy, center=%d tails=%d counts=%v", center, tails, counts[1:])
	}
}

func TestFolderNumber_ExponentialSkew(t *testing.T) {
	const folderCount = 10
	rng := rand.New(rand.NewSource(3))

	counts := make([]int, folderCount+1)
	for i := 0; i < 10000; i++ {
		folder, err := distrib.FolderNumber(int64(i+1), 10000, folderCount, types.DistributionExponential, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[folder]++
	}

	if counts[1] <= counts[folderCount] {
		t.Errorf("expected skew toward folder 1: folder1=%d folder%d=%d", counts[1], folderCount, counts[folderCount])
	}
}

func TestFolderNumber_SeededReproducibility(t *testing.T) {
	run := func() []int {
		rng := rand.New(rand.NewSource(1234))
		out := make([]int, 0, 100)
		for index := int64(1); index <= 100; index++ {
			folder, err := distrib.FolderNumber(index, 100, 7, types.DistributionGaussian, rng)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out = append(out, folder)
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("assignment %d differs across seeded runs: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestInverseNormalCDF(t *testing.T) {
	if z := distrib.InverseNormalCDF(0.5); math.Abs(z) > 1e-9 {
		t.Errorf("expected InverseNormalCDF(0.5) ~ 0, got %v", z)
	}

	// Symmetry: invCDF(p) == -invCDF(1-p).
	for _, p := range []float64{0.01, 0.1, 0.25, 0.4} {
		lo := distrib.InverseNormalCDF(p)
		hi := distrib.InverseNormalCDF(1 - p)
		if math.Abs(lo+hi) > 1e-6 {
			t.Errorf("asymmetric at p=%v: %v vs %v", p, lo, hi)
		}
	}

	// Monotonic over the clamped domain.
	prev := math.Inf(-1)
	for p := 0.001; p <= 0.999; p += 0.001 {
		z := distrib.InverseNormalCDF(p)
		if z <= prev {
			t.Fatalf("not monotonic at p=%v: %v <= %v", p, z, prev)
		}
		prev = z
	}

	// Tails are clamped, never infinite.
	if z := distrib.InverseNormalCDF(0); math.IsInf(z, 0) || math.IsNaN(z) {
		t.Errorf("expected finite value at p=0, got %v", z)
	}
	if z := distrib.InverseNormalCDF(1); math.IsInf(z, 0) || math.IsNaN(z) {
		t.Errorf("expected finite value at p=1, got %v", z)
	}

	// Known quantile: invCDF(0.975) ~ 1.959964.
	if z := distrib.InverseNormalCDF(0.975); math.Abs(z-1.959964) > 1e-3 {
		t.Errorf("expected ~1.959964 at p=0.975, got %v", z)
	}
}
