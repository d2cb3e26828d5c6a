package scoring

import "course-workers/internal/models"

// Category relationships curated by the marketplace's course team. Keys and
// values are catalog or suggestion category tags.

// TrendingCategories drives both the trending and the time-relevance bonus.
var TrendingCategories = models.NewCategorySet(
	"AI/ML", "Data Science", "React", "Node.js", "Python", "DevOps", "Blockchain", "Mobile",
)

// ComplementarySkills maps a category to categories that pair well with it.
var ComplementarySkills = map[string][]string{
	"JavaScript":   {"React", "Node.js", "Vue.js", "Angular"},
	"React":        {"Node.js", "Mobile", "UI/UX", "DevOps"},
	"Python":       {"AI/ML", "Data Science", "Django", "Flask"},
	"Lập trình":    {"JavaScript", "Python", "React", "Node.js"},
	"HTML":         {"CSS", "JavaScript", "UI/UX"},
	"CSS":          {"JavaScript", "UI/UX", "Thiết kế"},
	"Node.js":      {"Database", "DevOps", "API Design"},
	"AI/ML":        {"Data Science", "Python", "Deep Learning"},
	"Data Science": {"Python", "AI/ML", "Statistics"},
}

// LearningPaths maps a category to the usual next steps after it.
var LearningPaths = map[string][]string{
	"HTML":       {"CSS", "JavaScript"},
	"CSS":        {"JavaScript", "React"},
	"JavaScript": {"React", "Node.js", "Vue.js"},
	"React":      {"Node.js", "Mobile", "Advanced React"},
	"Python":     {"Django", "Flask", "AI/ML", "Data Science"},
	"AI/ML":      {"Deep Learning", "Computer Vision", "NLP"},
	"Lập trình":  {"JavaScript", "Python", "Java"},
}

// SkillGaps maps a skill the user has to skills their career path still needs.
var SkillGaps = map[string][]string{
	"JavaScript": {"React", "Node.js", "Vue.js"},
	"Python":     {"AI/ML", "Data Science", "Django"},
	"HTML":       {"CSS", "JavaScript", "UI/UX"},
	"CSS":        {"JavaScript", "UI/UX", "Thiết kế"},
	"React":      {"Node.js", "Mobile", "DevOps"},
	"Node.js":    {"DevOps", "Database", "API Design"},
}

// LevelProgression lists the levels worth recommending at each current level.
var LevelProgression = map[models.Level][]models.Level{
	models.LevelBasic:        {models.LevelBasic, models.LevelIntermediate},
	models.LevelIntermediate: {models.LevelIntermediate, models.LevelAdvanced},
	models.LevelAdvanced:     {models.LevelAdvanced},
}

// relatedTo reports whether category appears in table[key] for any key in from.
func relatedTo(table map[string][]string, from models.CategorySet, category string) bool {
	if category == "" {
		return false
	}
	for key := range from {
		for _, related := range table[key] {
			if related == category {
				return true
			}
		}
	}
	return false
}

func levelAllowed(current, candidate models.Level) bool {
	for _, l := range LevelProgression[current] {
		if l == candidate {
			return true
		}
	}
	return false
}
