// Package debias implements Hard Debias and Multiclass Hard Debias for word
// embeddings.
//
// Both estimators follow the same two-step lifecycle. Fit estimates a bias
// subspace by PCA over the deviations of definitional word sets from their
// centroids (one direction for HardDebias, k directions for
// MulticlassHardDebias) and stores it together with the equalize sets in an
// immutable FittedTransform. Transforms then
//
//  1. neutralize the selected words by removing their projection onto the
//     subspace, and
//  2. equalize every equalize set so that its members share one neutral
//     component and sit symmetrically around the subspace.
//
// Ownership of the vector space is explicit: TransformInPlace mutates the
// caller's space, TransformToCopy clones it first. Either way every new vector
// is computed before the first write, so a failed call leaves the target space
// unchanged.
//
// Basic usage:
//
//	vs, _ := embedding.FromVectors(words, vectors)
//	hd := debias.NewHardDebias(debias.WithLogger(logger))
//	if err := hd.Fit(vs, definitional, equalize, "gender"); err != nil {
//	    return err
//	}
//	out, err := hd.TransformToCopy(vs,
//	    debias.WithTarget(debias.All()),
//	    debias.WithIgnore("he", "she"),
//	)
//
// Words that should keep a legitimate group signal are passed to WithIgnore.
// Equalization is not affected by target or ignore selection.
package debias
