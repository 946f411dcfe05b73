package reportstore

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

const (
	defaultPrefix = "hazyerr"
	defaultTTL    = 24 * time.Hour
	defaultLimit  = 20
)

type Config struct {
	Prefix string        `yaml:"prefix" json:"prefix"`
	TTL    time.Duration `yaml:"ttl" json:"ttl"`
}

// Store keeps reports of internal errors in redis. Every report is stored under
// "{prefix}:reports:{id}" with a TTL and indexed by creation time in a global sorted
// set and in a sorted set of its module. Every Save drops index entries older than
// the TTL from the indexes it writes and extends their own TTL, so an index nobody
// writes to expires as a whole. Recent additionally drops ids of reports evicted
// before their TTL.
type Store struct {
	r      redis.Cmdable
	l      *slog.Logger
	prefix string
	ttl    time.Duration
	now    func() time.Time

	metrics *storeMetrics
}

func New(r redis.Cmdable, conf Config, l *slog.Logger) (*Store, error) {
	if r == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if l == nil {
		l = hzlog.NopLogger()
	}

	prefix := lo.Ternary(conf.Prefix == "", defaultPrefix, conf.Prefix)
	ttl := lo.Ternary(conf.TTL <= 0, defaultTTL, conf.TTL)

	return &Store{
		r:       r,
		l:       l.With(slog.String("component", "infra:report_store"), slog.String("prefix", prefix)),
		prefix:  prefix,
		ttl:     ttl,
		now:     time.Now,
		metrics: newStoreMetrics(prefix),
	}, nil
}

func (s *Store) reportKey(id string) string {
	return s.prefix + ":reports:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + ":reports:index"
}

func (s *Store) moduleIndexKey(module string) string {
	return s.prefix + ":reports:module:" + module
}

// Save stores the report and adds it to the indexes in one transaction.
func (s *Store) Save(ctx context.Context, r *Report) error {
	start := time.Now()
	defer s.metrics.SaveDuration.UpdateDuration(start)

	if r.GetID() == "" {
		return errors.New("report ID cannot be empty")
	}

	data, err := r.Encode()
	if err != nil {
		return errors.Wrap(err, "cannot encode report")
	}

	score := float64(r.CreatedAt.UnixNano())
	expiredBefore := strconv.FormatInt(s.now().Add(-s.ttl).UnixNano(), 10)

	pipe := s.r.TxPipeline()
	pipe.Set(ctx, s.reportKey(r.ID), data, s.ttl)
	for _, index := range []string{s.indexKey(), s.moduleIndexKey(r.Module)} {
		pipe.ZAdd(ctx, index, redis.Z{Score: score, Member: r.ID})
		pipe.ZRemRangeByScore(ctx, index, "-inf", "("+expiredBefore)
		pipe.Expire(ctx, index, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.metrics.SaveErrors.Inc()
		return errors.Wrap(err, "cannot save report to redis")
	}

	return nil
}

// GetByID returns hazyerr.ErrNotFound if there is no such report or it has expired.
func (s *Store) GetByID(ctx context.Context, id string) (*Report, error) {
	start := time.Now()
	defer s.metrics.GetByIDDuration.UpdateDuration(start)

	if id == "" {
		return nil, errors.New("report ID cannot be empty")
	}

	val, err := s.r.Get(ctx, s.reportKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(hazyerr.ErrNotFound, "report %q", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot get report from redis")
	}

	r := &Report{}
	if err := r.Decode(val); err != nil {
		return nil, errors.Wrap(err, "cannot decode report")
	}

	return r, nil
}

// Recent returns up to limit newest reports, newest first. An empty module selects
// reports of all modules.
func (s *Store) Recent(ctx context.Context, module string, limit int) ([]*Report, error) {
	start := time.Now()
	defer s.metrics.RecentDuration.UpdateDuration(start)

	if limit <= 0 {
		limit = defaultLimit
	}

	index := lo.Ternary(module == "", s.indexKey(), s.moduleIndexKey(module))

	ids, err := s.r.ZRevRange(ctx, index, 0, int64(limit-1)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(err, "cannot get report ids from redis")
	}

	reports := make([]*Report, 0, len(ids))
	stale := make([]any, 0)

	for _, id := range ids {
		r, err := s.GetByID(ctx, id)
		if errors.Is(err, hazyerr.ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}

		reports = append(reports, r)
	}

	if len(stale) > 0 {
		s.l.DebugContext(ctx, "dropping expired reports from index", slog.Int("count", len(stale)))

		if err := s.r.ZRem(ctx, index, stale...).Err(); err != nil {
			s.l.WarnContext(ctx, "cannot drop expired reports from index", hzlog.Error(err))
		}
	}

	return reports, nil
}

// Report stores err as a new report. It satisfies invoke.Reporter.
func (s *Store) Report(ctx context.Context, target string, err *hazyerr.InternalError) error {
	r := NewReport(target, err, s.now())
	if id, ok := hzlog.TraceID(ctx); ok {
		r.TraceID = id
	}

	return s.Save(ctx, r)
}
