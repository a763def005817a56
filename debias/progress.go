package debias

// Transform stages reported through WithProgress.
const (
	StageNeutralize = "neutralize"
	StageEqualize   = "equalize"
	StageCommit     = "commit"
)

// progressChunk is the number of target rows neutralized between two
// progress reports.
const progressChunk = 10000

// Progress describes how far a transform has advanced within one stage.
type Progress struct {
	Stage string
	Done  int
	Total int
}

// Fraction returns Done/Total, or 1 for an empty stage.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}
