package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"longevity-frame/internal/domain"
)

// ScoreStore is a Redis-backed implementation of app.ScoreStore, shared by
// every instance pointing at the same Redis.
// Keys (prefix p):
//
//	{p}:user:{fid}   LIST  of record JSON, most recent first
//	{p}:best         HASH  fid -> best record JSON
//	{p}:board        ZSET  fid weighted by best score, ties by first-seen order
//	{p}:seen         HASH  fid -> first-seen sequence
//	{p}:seq          STRING sequence counter
type ScoreStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// boardShift separates the score from the first-seen sequence in a board
// weight. Weights stay below 1e14 so Lua's number formatting keeps them exact.
const boardShift = 1_000_000_000

// saveScript appends the record and promotes it to the user's best when it
// strictly beats the current one. Running it as one script keeps the append
// atomic with respect to concurrent readers.
var saveScript = redis.NewScript(`
redis.call('LPUSH', KEYS[1], ARGV[3])
local seq = redis.call('HGET', KEYS[4], ARGV[1])
if not seq then
  seq = redis.call('INCR', KEYS[5])
  redis.call('HSET', KEYS[4], ARGV[1], seq)
end
local weight = tonumber(ARGV[2]) * tonumber(ARGV[4]) + (tonumber(ARGV[4]) - 1 - tonumber(seq))
local current = redis.call('ZSCORE', KEYS[2], ARGV[1])
if (not current) or tonumber(current) < weight then
  redis.call('ZADD', KEYS[2], weight, ARGV[1])
  redis.call('HSET', KEYS[3], ARGV[1], ARGV[3])
end
return 1
`)

func NewScoreStore(client *redis.Client, prefix string) *ScoreStore {
	if prefix == "" {
		prefix = "scores"
	}
	return &ScoreStore{client: client, prefix: prefix, now: time.Now}
}

// NewScoreStoreWithClock allows deterministic timestamps in tests.
func NewScoreStoreWithClock(client *redis.Client, prefix string, now func() time.Time) *ScoreStore {
	s := NewScoreStore(client, prefix)
	s.now = now
	return s
}

func (s *ScoreStore) Save(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	rec.Timestamp = s.now().UTC()
	if rec.Answers == nil {
		rec.Answers = []domain.Answer{}
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("marshal score record: %w", err)
	}
	fid := strconv.FormatInt(rec.UserID, 10)
	keys := []string{s.userKey(rec.UserID), s.key("board"), s.key("best"), s.key("seen"), s.key("seq")}
	if err := saveScript.Run(ctx, s.client, keys, fid, rec.Score, string(raw), int64(boardShift)).Err(); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("save score record: %w", err)
	}
	return rec, nil
}

func (s *ScoreStore) ForUser(ctx context.Context, userID int64) ([]domain.ScoreRecord, error) {
	raws, err := s.client.LRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load user records: %w", err)
	}
	return decodeRecords(raws)
}

func (s *ScoreStore) Leaderboard(ctx context.Context, limit int) ([]domain.ScoreRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	fids, err := s.client.ZRevRange(ctx, s.key("board"), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	if len(fids) == 0 {
		return []domain.ScoreRecord{}, nil
	}
	vals, err := s.client.HMGet(ctx, s.key("best"), fids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load best records: %w", err)
	}
	raws := make([]string, 0, len(vals))
	for _, v := range vals {
		if str, ok := v.(string); ok {
			raws = append(raws, str)
		}
	}
	return decodeRecords(raws)
}

func (s *ScoreStore) Rank(ctx context.Context, userID int64) (int, error) {
	rank, err := s.client.ZRevRank(ctx, s.key("board"), strconv.FormatInt(userID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load rank: %w", err)
	}
	return int(rank) + 1, nil
}

func (s *ScoreStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *ScoreStore) userKey(userID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(userID, 10)
}

func decodeRecords(raws []string) ([]domain.ScoreRecord, error) {
	out := make([]domain.ScoreRecord, 0, len(raws))
	for _, raw := range raws {
		var rec domain.ScoreRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode score record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
