package debias

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

// Subspace はPCAで推定したバイアス部分空間
type Subspace struct {
	// Components は k × d の基底（行ごとに単位ベクトル）。縮退した成分はゼロベクトル。
	Components [][]float64
	// ExplainedVariance は各成分の寄与率
	ExplainedVariance []float64
	// NSamples はPCAに入力した偏差ベクトルの本数
	NSamples int
	// Degenerate は縮退した成分のインデックス
	Degenerate []int
}

// Deviations は各セットの重心からの偏差を行として積み上げた n × d 行列を返す。
// 語彙に存在しない単語は MissingWordError（SetIndex はセット番号）になる。
func Deviations(vs embedding.VectorSpace, sets [][]string) (*mat.Dense, error) {
	d := vs.Dim()
	var rows int
	for _, set := range sets {
		rows += len(set)
	}
	if rows == 0 {
		return nil, errors.NewModelError("debias.Deviations", "empty definitional sets", errors.ErrEmptyData)
	}

	out := mat.NewDense(rows, d, nil)
	r := 0
	for i, set := range sets {
		members := make([][]float64, len(set))
		centroid := make([]float64, d)
		for j, w := range set {
			v, ok := vs.Vector(w)
			if !ok {
				return nil, errors.NewMissingWordError(w, errors.SourceDefinitional, i)
			}
			members[j] = v
			floats.Add(centroid, v)
		}
		floats.Scale(1/float64(len(set)), centroid)

		for _, v := range members {
			floats.Sub(v, centroid)
			out.SetRow(r, v)
			r++
		}
	}
	return out, nil
}

// EstimateSubspace は定義セットの偏差にPCAをかけ、上位 k 成分を返す。
//
// k は min(偏差の本数, 次元) に切り詰められる。各成分は、射影が0でない最初の
// 偏差行（通常は最初の定義セットの最初の単語）が正に射影される向きに揃えるため、
// 結果は決定的になる。
// 分散がほぼ0の成分は縮退とみなしてゼロベクトルで保持し、警告を出す。
func EstimateSubspace(vs embedding.VectorSpace, sets [][]string, k int, criterion string) (*Subspace, error) {
	if k <= 0 {
		return nil, errors.NewValidationError("n_components", "must be positive", k)
	}
	X, err := Deviations(vs, sets)
	if err != nil {
		return nil, err
	}
	n, d := X.Dims()
	k = min(k, n, d)

	if errors.NearZero(mat.Norm(X, 2)) {
		sub := &Subspace{
			Components:        make([][]float64, k),
			ExplainedVariance: make([]float64, k),
			NSamples:          n,
		}
		for j := range sub.Components {
			sub.Components[j] = make([]float64, d)
			sub.Degenerate = append(sub.Degenerate, j)
			errors.Warn(errors.NewDegenerateDirectionWarning("fit", criterion, j, 0))
		}
		return sub, nil
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return nil, errors.NewModelError("debias.EstimateSubspace", "PCA decomposition failed", errors.New("SVD did not converge"))
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	_, available := vecs.Dims()
	k = min(k, available)

	total := floats.Sum(vars)

	sub := &Subspace{
		Components:        make([][]float64, k),
		ExplainedVariance: make([]float64, k),
		NSamples:          n,
	}
	for j := 0; j < k; j++ {
		comp := mat.Col(nil, j, &vecs)
		if vars[j] <= errors.Epsilon*max(1, total) {
			sub.Components[j] = make([]float64, d)
			sub.Degenerate = append(sub.Degenerate, j)
			errors.Warn(errors.NewDegenerateDirectionWarning("fit", criterion, j, vars[j]))
			continue
		}

		floats.Scale(1/floats.Norm(comp, 2), comp)
		orient(comp, X)
		if err := errors.CheckVector("debias.EstimateSubspace", "", comp); err != nil {
			return nil, err
		}
		sub.Components[j] = comp
		sub.ExplainedVariance[j] = errors.SafeDivide(vars[j], total)
	}
	return sub, nil
}

// Dense returns the components as a k × d matrix.
func (s *Subspace) Dense() *mat.Dense {
	return componentsDense(s.Components)
}

func componentsDense(components [][]float64) *mat.Dense {
	if len(components) == 0 {
		return nil
	}
	d := len(components[0])
	m := mat.NewDense(len(components), d, nil)
	for i, c := range components {
		m.SetRow(i, c)
	}
	return m
}

// orient flips comp so that the first deviation row with a non-zero
// projection onto it projects positively.
func orient(comp []float64, X *mat.Dense) {
	n, _ := X.Dims()
	for i := 0; i < n; i++ {
		p := floats.Dot(comp, X.RawRowView(i))
		if errors.NearZero(p) {
			continue
		}
		if p < 0 {
			floats.Scale(-1, comp)
		}
		return
	}
}
