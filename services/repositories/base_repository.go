package repositories

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BaseRepository provides common database functionality. Mutations must hold
// mu: sqlite has a single writer and the synchronizer never issues
// concurrent writes against the same table. Reads run freely against
// snapshot (WAL) state.
type BaseRepository struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection
func (r *BaseRepository) DB() *gorm.DB {
	return r.db
}

// Query describes an optional predicate, ordering and paging for Fetch.
type Query struct {
	Predicate string
	Args      []interface{}
	Sort      string
	Limit     int
	Offset    int
}

// Fetch loads records of one entity type. Query failures are absorbed per
// the fail-soft read policy: logged, empty slice returned.
func Fetch[T any](r *BaseRepository, q Query) []T {
	db := r.db.Model(new(T))
	if q.Predicate != "" {
		db = db.Where(q.Predicate, q.Args...)
	}
	if q.Sort != "" {
		db = db.Order(q.Sort)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}

	var out []T
	if err := db.Find(&out).Error; err != nil {
		log.WithError(err).Warn("Fetch query failed, returning empty result")
		return nil
	}
	return out
}
