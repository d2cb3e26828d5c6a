// internal/recommendation/signals/store.go
package signals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	historyQuery   = `SELECT category, COALESCE(SUM(time_spent_seconds), 0) FROM user_course_views WHERE user_id = $1 GROUP BY category ORDER BY category`
	favoritesQuery = `SELECT DISTINCT category FROM user_favorites WHERE user_id = $1 ORDER BY category`
	cartQuery      = `SELECT course_id, category, price FROM cart_items WHERE user_id = $1 ORDER BY added_at`
	profileQuery   = `SELECT current_level, current_skills FROM user_profiles WHERE user_id = $1`
)

// CacheKey returns the Redis key for one kind of user record.
func CacheKey(kind, userID string) string {
	return "user:signals:" + kind + ":" + userID
}

// Store reads user records from PostgreSQL through a Redis read-through
// cache. A nil Redis client disables caching.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  rdb,
		ttl:    ttl,
		logger: logger.Component(log, "signal-store"),
	}
}

func (s *Store) GetUserHistory(ctx context.Context, userID string) (*History, error) {
	return cached(ctx, s, SourceHistory, userID, func(ctx context.Context) (*History, error) {
		rows, err := s.db.QueryContext(ctx, historyQuery, userID)
		if err != nil {
			return nil, fmt.Errorf("query history: %w", err)
		}
		defer rows.Close()

		h := &History{TimeSpentByCategory: map[string]int{}}
		for rows.Next() {
			var category string
			var spent int
			if err := rows.Scan(&category, &spent); err != nil {
				return nil, fmt.Errorf("scan history: %w", err)
			}
			h.ViewedCategories = append(h.ViewedCategories, category)
			h.TimeSpentByCategory[category] = spent
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		return h, nil
	})
}

func (s *Store) GetUserFavorites(ctx context.Context, userID string) (*Favorites, error) {
	return cached(ctx, s, SourceFavorites, userID, func(ctx context.Context) (*Favorites, error) {
		rows, err := s.db.QueryContext(ctx, favoritesQuery, userID)
		if err != nil {
			return nil, fmt.Errorf("query favorites: %w", err)
		}
		defer rows.Close()

		f := &Favorites{}
		for rows.Next() {
			var category string
			if err := rows.Scan(&category); err != nil {
				return nil, fmt.Errorf("scan favorites: %w", err)
			}
			f.PreferredCategories = append(f.PreferredCategories, category)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read favorites: %w", err)
		}
		return f, nil
	})
}

func (s *Store) GetUserCart(ctx context.Context, userID string) (*Cart, error) {
	return cached(ctx, s, SourceCart, userID, func(ctx context.Context) (*Cart, error) {
		rows, err := s.db.QueryContext(ctx, cartQuery, userID)
		if err != nil {
			return nil, fmt.Errorf("query cart: %w", err)
		}
		defer rows.Close()

		c := &Cart{Items: []CartItem{}}
		for rows.Next() {
			var item CartItem
			var price sql.NullInt64
			if err := rows.Scan(&item.CourseID, &item.Category, &price); err != nil {
				return nil, fmt.Errorf("scan cart: %w", err)
			}
			if price.Valid {
				p := price.Int64
				item.Price = &p
			}
			c.Items = append(c.Items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read cart: %w", err)
		}
		return c, nil
	})
}

func (s *Store) GetUserProfile(ctx context.Context, userID string) (*Profile, error) {
	return cached(ctx, s, SourceProfile, userID, func(ctx context.Context) (*Profile, error) {
		var level sql.NullString
		var skills []string
		err := s.db.QueryRowContext(ctx, profileQuery, userID).Scan(&level, pq.Array(&skills))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("query profile: %w", err)
		}
		return &Profile{CurrentLevel: models.Level(level.String), CurrentSkills: skills}, nil
	})
}

// cached serves a record from Redis when present, otherwise loads it and
// writes it back. Cache errors never fail the lookup.
func cached[T any](ctx context.Context, s *Store, kind, userID string, load func(context.Context) (*T, error)) (*T, error) {
	key := CacheKey(kind, userID)
	if s.redis != nil {
		val, err := s.redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			var record T
			if jsonErr := json.Unmarshal([]byte(val), &record); jsonErr == nil {
				return &record, nil
			}
			s.logger.Debug("discarding undecodable cache entry", map[string]interface{}{"key": key})
		case !errors.Is(err, redis.Nil):
			s.logger.Debug("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	record, err := load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		return nil, err
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewQueryTimeoutError(kind)
	default:
		return nil, apperrors.NewQueryExecutionFailedError(kind, err)
	}

	if s.redis != nil && s.ttl > 0 {
		data, _ := json.Marshal(record)
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Debug("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return record, nil
}
