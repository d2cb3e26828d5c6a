// internal/recommendation/signals/extractor.go
package signals

import (
	"context"
	"errors"

	"course-workers/internal/common/logger"
	"course-workers/internal/common/metrics"
	"course-workers/internal/models"

	"golang.org/x/sync/errgroup"
)

// Signal sources, used in logs, metrics and UserSignals.Defaulted.
const (
	SourceHistory   = "history"
	SourceFavorites = "favorites"
	SourceCart      = "cart"
	SourceProfile   = "profile"
)

// EstimatedItemPrice is counted for cart items without a known price.
const EstimatedItemPrice int64 = 500000

// Cold-start defaults.
var (
	DefaultViewedCategories   = []string{models.CategoryProgramming, "JavaScript"}
	DefaultFavoriteCategories = []string{models.CategoryProgramming}
	DefaultLevel              = models.LevelBasic
	DefaultSkills             = []string{"JavaScript", "HTML", "CSS"}
	DefaultCartPriceRange     = models.PriceRange{Label: models.PriceLabelMid, Min: 500000, Max: 1000000}
)

// Extractor turns collaborator records into UserSignals. Extract never fails:
// every source that errors or comes back empty is replaced by its default.
type Extractor struct {
	source Collaborator
	logger logger.Logger
}

func NewExtractor(source Collaborator, log logger.Logger) *Extractor {
	return &Extractor{source: source, logger: logger.Component(log, "signal-extractor")}
}

func (e *Extractor) Extract(ctx context.Context, userID string) models.UserSignals {
	return extract(ctx, e.source, e.logger, userID)
}

// ExtractFrom runs the extraction against a caller supplied collaborator.
func (e *Extractor) ExtractFrom(ctx context.Context, source Collaborator, userID string) models.UserSignals {
	return extract(ctx, source, e.logger, userID)
}

func extract(ctx context.Context, source Collaborator, log logger.Logger, userID string) models.UserSignals {
	var (
		history   *History
		favorites *Favorites
		cart      *Cart
		profile   *Profile
		errs      [4]error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history, errs[0] = source.GetUserHistory(gctx, userID)
		return nil
	})
	g.Go(func() error {
		favorites, errs[1] = source.GetUserFavorites(gctx, userID)
		return nil
	})
	g.Go(func() error {
		cart, errs[2] = source.GetUserCart(gctx, userID)
		return nil
	})
	g.Go(func() error {
		profile, errs[3] = source.GetUserProfile(gctx, userID)
		return nil
	})
	_ = g.Wait()

	s := models.UserSignals{UserID: userID}
	fallback := func(src string, err error) {
		s.Defaulted = append(s.Defaulted, src)
		metrics.SignalFallbacks.WithLabelValues(src).Inc()
		fields := map[string]interface{}{"userId": userID, "source": src}
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			fields["error"] = err.Error()
			log.Warn("signal lookup failed, using defaults", fields)
			return
		}
		log.Debug("no signal record, using defaults", fields)
	}

	if errs[0] != nil || history == nil || len(history.ViewedCategories) == 0 {
		fallback(SourceHistory, errs[0])
		s.ViewedCategories = models.NewCategorySet(DefaultViewedCategories...)
	} else {
		s.ViewedCategories = models.NewCategorySet(history.ViewedCategories...)
	}

	if errs[1] != nil || favorites == nil || len(favorites.PreferredCategories) == 0 {
		fallback(SourceFavorites, errs[1])
		s.FavoriteCategories = models.NewCategorySet(DefaultFavoriteCategories...)
	} else {
		s.FavoriteCategories = models.NewCategorySet(favorites.PreferredCategories...)
	}

	if errs[2] != nil || cart == nil {
		fallback(SourceCart, errs[2])
		cart = &Cart{}
	}
	applyCart(&s, cart)

	if errs[3] != nil || profile == nil {
		fallback(SourceProfile, errs[3])
		profile = &Profile{}
	}
	s.CurrentLevel = profile.CurrentLevel
	if !s.CurrentLevel.Valid() {
		s.CurrentLevel = DefaultLevel
	}
	if len(profile.CurrentSkills) == 0 {
		s.CurrentSkills = models.NewCategorySet(DefaultSkills...)
	} else {
		s.CurrentSkills = models.NewCategorySet(profile.CurrentSkills...)
	}

	return s
}

// applyCart derives the cart categories, total and price band.
func applyCart(s *models.UserSignals, cart *Cart) {
	s.CartCategories = models.NewCategorySet()
	s.CartItemCount = len(cart.Items)
	if len(cart.Items) == 0 {
		s.CartPriceRange = DefaultCartPriceRange
		return
	}

	var total int64
	for _, item := range cart.Items {
		s.CartCategories.Add(item.Category)
		if item.Price != nil {
			total += *item.Price
		} else {
			total += EstimatedItemPrice
		}
	}
	s.CartTotal = total
	s.CartPriceRange = models.PriceRange{Min: total * 7 / 10, Max: total * 13 / 10}
}
