// Package adherence は食事記録からダイエット順守状況を集計する。
package adherence

import "github.com/hitoshi/dietlog/internal/model"

// Summary は食事記録の集計結果。
type Summary struct {
	Total      int // 全食事数
	OnDiet     int // ダイエット内の食事数
	OffDiet    int // ダイエット外の食事数
	BestStreak int // ダイエット内の食事が連続した最長回数
}

// Compute は作成順に並んだ食事から集計結果を算出する。
// 連続記録はmealsの並び順で判定するため、呼び出し側は必ず作成順（昇順）で渡すこと。
// dateや表示順で並べ替えたスライスを渡すと連続記録が正しく算出されない。
func Compute(meals []*model.Meal) Summary {
	flags := make([]bool, len(meals))
	for i, m := range meals {
		flags[i] = m.OnDiet
	}
	return ComputeFlags(flags)
}

// ComputeFlags はダイエット内フラグの並びから集計結果を算出する。
// 空入力の場合は全項目0を返す。
func ComputeFlags(onDiet []bool) Summary {
	var s Summary
	current := 0
	for _, on := range onDiet {
		s.Total++
		if !on {
			current = 0
			continue
		}
		s.OnDiet++
		current++
		if current > s.BestStreak {
			s.BestStreak = current
		}
	}
	s.OffDiet = s.Total - s.OnDiet
	return s
}
