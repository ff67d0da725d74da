package report

import (
	"sort"

	"github.com/abhisek/mathquiz/internal/quiz"
)

// SkillStats summarizes performance on one skill.
type SkillStats struct {
	Skill     string
	Correct   int
	Incorrect int
	Total     int
	Percent   float64
}

// Aggregate groups the quiz history by skill. The result is sorted
// ascending by percent so the weakest skills lead the breakdown, with
// skill name as the tiebreaker for stable output.
func Aggregate(history []quiz.Record) []SkillStats {
	bySkill := make(map[string]*SkillStats)
	order := make([]string, 0, len(history))
	for _, r := range history {
		st, ok := bySkill[r.Skill]
		if !ok {
			st = &SkillStats{Skill: r.Skill}
			bySkill[r.Skill] = st
			order = append(order, r.Skill)
		}
		st.Total++
		if r.Correct {
			st.Correct++
		} else {
			st.Incorrect++
		}
	}

	out := make([]SkillStats, 0, len(order))
	for _, name := range order {
		st := bySkill[name]
		st.Percent = float64(st.Correct) / float64(st.Total) * 100
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent < out[j].Percent
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}
