package scoring

import (
	"course-workers/internal/models"
)

// Input is what a heuristic sees for a single candidate.
type Input struct {
	Course  *models.Course
	Signals *models.UserSignals
	// PeerDraw is the random draw taken for this candidate, in [0,1).
	PeerDraw float64
}

// Rule is one weighted predicate.
type Rule struct {
	Name   string
	Weight int
	Reason string
	Match  func(in *Input) bool
}

// Heuristic is either a single rule or, when SubRules is set, a composite
// whose first matching sub-rule decides the points and the reason.
type Heuristic struct {
	Rule
	SubRules []Rule
}

// evaluate returns the rule that fired, if any.
func (h Heuristic) evaluate(in *Input) (Rule, bool) {
	if len(h.SubRules) == 0 {
		if h.Match != nil && h.Match(in) {
			return h.Rule, true
		}
		return Rule{}, false
	}
	for _, sub := range h.SubRules {
		if sub.Match(in) {
			return sub, true
		}
	}
	return Rule{}, false
}

const (
	ReasonHistory       = "Phù hợp với lịch sử học tập của bạn"
	ReasonFavorite      = "Thuộc lĩnh vực bạn yêu thích"
	ReasonCartCategory  = "Bổ sung cho các khóa học trong giỏ hàng của bạn"
	ReasonCartSkill     = "Kỹ năng bổ trợ hoàn hảo cho khóa học trong giỏ hàng"
	ReasonCartBudget    = "Phù hợp với ngân sách bạn đã chọn"
	ReasonCartPath      = "Bước tiếp theo trong lộ trình học tập của bạn"
	ReasonCartEmpty     = "Khóa học phổ biến cho người mới bắt đầu"
	ReasonLevel         = "Phù hợp với trình độ hiện tại của bạn"
	ReasonTrending      = "Trending trong lĩnh vực bạn quan tâm"
	ReasonSkillGap      = "Kỹ năng bổ trợ cần thiết cho career path"
	ReasonPeer          = "Được học viên có profile tương tự đánh giá cao"
	ReasonTimeRelevance = "Phù hợp với xu hướng thị trường hiện tại"

	// FallbackReason is used when no heuristic fires.
	FallbackReason = "Được AI đề xuất dành cho bạn"
)

// peerThreshold is the draw above which the peer-similarity bonus applies.
const peerThreshold = 0.5

// CartRules are evaluated in order; the first match wins.
var CartRules = []Rule{
	{
		Name: "cart_category", Weight: 15, Reason: ReasonCartCategory,
		Match: func(in *Input) bool {
			return in.Signals.CartCategories.Has(in.Course.Category)
		},
	},
	{
		Name: "cart_complementary", Weight: 12, Reason: ReasonCartSkill,
		Match: func(in *Input) bool {
			return relatedTo(ComplementarySkills, in.Signals.CartCategories, in.Course.Category)
		},
	},
	{
		Name: "cart_budget", Weight: 8, Reason: ReasonCartBudget,
		Match: func(in *Input) bool {
			if in.Signals.CartEmpty() {
				return false
			}
			lo, hi := CartBudget(in.Signals.CartTotal)
			return in.Course.Price >= lo && in.Course.Price <= hi
		},
	},
	{
		Name: "cart_learning_path", Weight: 10, Reason: ReasonCartPath,
		Match: func(in *Input) bool {
			return relatedTo(LearningPaths, in.Signals.CartCategories, in.Course.Category)
		},
	},
	{
		Name: "cart_empty", Weight: 5, Reason: ReasonCartEmpty,
		Match: func(in *Input) bool {
			return in.Signals.CartEmpty()
		},
	},
}

// DefaultHeuristics is the scan order used for both points and reasons.
var DefaultHeuristics = []Heuristic{
	{Rule: Rule{
		Name: "history", Weight: 20, Reason: ReasonHistory,
		Match: func(in *Input) bool {
			return in.Signals.ViewedCategories.Has(in.Course.Category)
		},
	}},
	{Rule: Rule{
		Name: "favorite", Weight: 15, Reason: ReasonFavorite,
		Match: func(in *Input) bool {
			return in.Signals.FavoriteCategories.Has(in.Course.Category)
		},
	}},
	{Rule: Rule{Name: "cart"}, SubRules: CartRules},
	{Rule: Rule{
		Name: "level", Weight: 10, Reason: ReasonLevel,
		Match: func(in *Input) bool {
			return levelAllowed(in.Signals.CurrentLevel, in.Course.Level)
		},
	}},
	{Rule: Rule{
		Name: "trending", Weight: 10, Reason: ReasonTrending,
		Match: func(in *Input) bool {
			return TrendingCategories.Has(in.Course.Category)
		},
	}},
	{Rule: Rule{
		Name: "skill_gap", Weight: 15, Reason: ReasonSkillGap,
		Match: func(in *Input) bool {
			return relatedTo(SkillGaps, in.Signals.CurrentSkills, in.Course.Category)
		},
	}},
	{Rule: Rule{
		Name: "peer", Weight: 5, Reason: ReasonPeer,
		Match: func(in *Input) bool {
			return in.PeerDraw > peerThreshold
		},
	}},
	// Shares the trending set with the trending rule, so trending categories
	// collect both bonuses.
	{Rule: Rule{
		Name: "time_relevance", Weight: 5, Reason: ReasonTimeRelevance,
		Match: func(in *Input) bool {
			return TrendingCategories.Has(in.Course.Category)
		},
	}},
}

// CartBudget returns the inclusive price band around a cart total.
func CartBudget(total int64) (lo, hi int64) {
	return total * 7 / 10, total * 13 / 10
}
