package debias

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// Equalize はペアまたはグループのベクトルをバイアス部分空間に対して対称に再配置する。
//
// μ をグループの平均、ν = μ − proj(μ) をその中立成分とすると、各メンバーは
//
//	x' = ν + sqrt(max(0, 1 − ||ν||²)) · y,   y = (proj(x) − proj(μ)) / ||proj(x) − proj(μ)||
//
// に置き換えられる。全メンバーが同じ中立成分と単位ノルムを持ち、ペアの場合は
// バイアス軸上で ±z に分かれる。||proj(x) − proj(μ)|| がほぼ0のメンバーは、
// 最初の非縮退成分 b0 に沿った単位ベクトルを使う。向きは最初のそのようなメンバーでは
// b0 への元の射影の符号（0なら +）、以降は交互に反転する。
//
// 再適用して結果が変わらないのは、ペアと、単位方向 y の和が0になる釣り合った
// グループに限られる。3語以上で y が釣り合わないグループ（例えば2次元部分空間上で
// 偏った三つ組）では、1回目の出力の平均がバイアス成分を持つため、2回目の適用で
// 各メンバーの y が変わる。中立成分と単位ノルムは2回目以降も保たれる。
//
// 非縮退成分が一つもない場合は入力のコピーをそのまま返し、skipped を true にする。
// members は変更しない。
func Equalize(members [][]float64, components [][]float64) (out [][]float64, skipped bool) {
	return equalize(members, members, components)
}

// equalize takes the neutral centroid from members and the bias-side
// directions from reference, the same words before neutralization.
func equalize(members, reference [][]float64, components [][]float64) (out [][]float64, skipped bool) {
	out = make([][]float64, len(members))
	if len(members) == 0 {
		return out, false
	}

	b0 := firstNonDegenerate(components)
	if b0 == nil {
		for i, x := range members {
			out[i] = append([]float64(nil), x...)
		}
		return out, true
	}
	b0Unit := append([]float64(nil), b0...)
	floats.Scale(1/floats.Norm(b0Unit, 2), b0Unit)

	d := len(members[0])
	mu := make([]float64, d)
	for _, x := range members {
		floats.Add(mu, x)
	}
	floats.Scale(1/float64(len(members)), mu)

	nu := make([]float64, d)
	floats.SubTo(nu, mu, Project(mu, components))
	scale := errors.SafeSqrt(1 - floats.Dot(nu, nu))

	refMu := make([]float64, d)
	for _, x := range reference {
		floats.Add(refMu, x)
	}
	floats.Scale(1/float64(len(reference)), refMu)
	muB := Project(refMu, components)

	sign := 0.0
	for i, x := range reference {
		y := Project(x, components)
		floats.Sub(y, muB)
		if n := floats.Norm(y, 2); !errors.NearZero(n) {
			floats.Scale(1/n, y)
		} else {
			if sign == 0 {
				sign = 1
				if floats.Dot(x, b0Unit) < -errors.Epsilon {
					sign = -1
				}
			} else {
				sign = -sign
			}
			copy(y, b0Unit)
			floats.Scale(sign, y)
		}

		xp := make([]float64, d)
		copy(xp, nu)
		floats.AddScaled(xp, scale, y)
		out[i] = xp
	}
	return out, skipped
}

func firstNonDegenerate(components [][]float64) []float64 {
	for _, b := range components {
		if !errors.NearZero(floats.Dot(b, b)) {
			return b
		}
	}
	return nil
}
