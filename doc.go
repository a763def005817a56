// Package debias removes social bias directions from word embeddings.
//
// It implements Hard Debias for binary criteria (he/she, man/woman) and
// Multiclass Hard Debias for criteria with more than two groups
// (judaism/christianity/islam). Both estimators learn a bias subspace from
// definitional word sets, then neutralize selected words against it and
// equalize paired words around it.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/debias/debias"
//	    "github.com/YuminosukeSato/debias/embedding"
//	)
//
//	func main() {
//	    vs, err := embedding.FromMap(
//	        []string{"he", "she", "doctor"},
//	        map[string][]float64{
//	            "he":     {1, 0, 0},
//	            "she":    {-1, 0, 0},
//	            "doctor": {0.5, 0.5, 0},
//	        },
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    hd := debias.NewHardDebias()
//	    if err := hd.Fit(vs, [][]string{{"he", "she"}}, [][]string{{"he", "she"}}, "gender"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := hd.TransformToCopy(vs, debias.WithTarget(debias.Only("doctor")))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    doctor, _ := out.Vector("doctor")
//	    fmt.Println(doctor) // [0 0.5 0]
//	}
//
// # Packages
//
//   - debias: HardDebias, MulticlassHardDebias, selectors and the fitted transform
//   - embedding: the VectorSpace interface and the in-memory KeyedVectors
//   - metrics: DirectBias and displacement scores
//   - performance: memory budgets for copying transforms
//   - core/model: estimator state and gob persistence
//   - core/parallel: row-parallel helpers used by neutralization
//   - pkg/config: YAML job files
//   - pkg/errors: structured errors and numerical warnings
//   - pkg/log: slog and zerolog backed logging
//
// # Performance
//
// Neutralization runs in parallel once a transform selects more than
// core/parallel.DefaultThreshold words. TransformInPlace never copies the
// vocabulary: it rewrites targets in batches through one reused buffer and
// keeps only the removed bias coefficients and the norm of each word, which
// is what a failed write needs to roll the space back. TransformToCopy
// reserves the copy plus that working memory from an optional
// performance.MemoryBudget and fails with InsufficientMemoryError when it
// does not fit.
package debias
