// Package log defines standard attribute keys for debiasing operations.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples",
// "debias.criterion") so that records can be filtered in log pipelines.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "HardDebias", "MulticlassHardDebias"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one estimator instance (a ULID by default).
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "neutralize", "equalize"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey is the number of deviation rows fed to the subspace PCA.
	SamplesKey = "data.samples"

	// FeaturesKey is the embedding dimensionality.
	FeaturesKey = "data.features"

	// VocabularyKey is the number of words in the vector space.
	VocabularyKey = "data.vocabulary"

	// DataSizeKey indicates the memory size of the data in bytes.
	DataSizeKey = "data.size_bytes"
)

// Debias Context
const (
	// CriterionKey names the bias criterion, e.g. "gender" or "religion".
	CriterionKey = "debias.criterion"

	// ComponentsKey is the number of bias subspace components.
	ComponentsKey = "debias.components"

	// ExplainedVarianceKey is the explained variance ratio of the kept components.
	ExplainedVarianceKey = "debias.explained_variance"

	// TargetsKey is the number of words selected for neutralization.
	TargetsKey = "debias.targets"

	// EqualizeSetsKey is the number of equalize sets applied.
	EqualizeSetsKey = "debias.equalize_sets"

	// CopyKey records whether the transform worked on a copy.
	CopyKey = "debias.copy"

	// SkippedKey counts vectors left untouched because of degenerate components.
	SkippedKey = "debias.skipped"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MemoryUsageKey records memory usage in bytes during the operation.
	MemoryUsageKey = "perf.memory_bytes"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit        = "fit"
	OperationTransform  = "transform"
	OperationNeutralize = "neutralize"
	OperationEqualize   = "equalize"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorMissingWord       = "MISSING_WORD"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInsufficientMem   = "INSUFFICIENT_MEMORY"
)
