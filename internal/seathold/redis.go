package seathold

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-booking/internal/apperrors"
)

// Every seat is its own key, seathold:<showtime>:<seat>, whose value is the
// owner and whose TTL is the hold duration. Redis drops expired holds itself.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// holdSeats checks and writes all seats in one step.
//
// KEYS = one key per seat
// ARGV[1] = owner, ARGV[2] = TTL in milliseconds, ARGV[3..] = seat labels
//
// Returns the labels held by another owner; when non-empty nothing was written.
var holdSeats = redis.NewScript(`
local owner = ARGV[1]
local ttl   = tonumber(ARGV[2])
local taken = {}
for i, key in ipairs(KEYS) do
    local cur = redis.call('GET', key)
    if cur and cur ~= owner then
        table.insert(taken, ARGV[i + 2])
    end
end
if #taken > 0 then
    return taken
end
for _, key in ipairs(KEYS) do
    redis.call('SET', key, owner, 'PX', ttl)
end
return taken
`)

// releaseSeats deletes the keys still owned by ARGV[1].
var releaseSeats = redis.NewScript(`
local released = 0
for _, key in ipairs(KEYS) do
    if redis.call('GET', key) == ARGV[1] then
        redis.call('DEL', key)
        released = released + 1
    end
end
return released
`)

func NewRedisStore(opts Options) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddress,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisStore{client: client, ttl: opts.TTL}, nil
}

func (r *redisStore) Hold(ctx context.Context, showtimeID uint, owner string, seats []string) (time.Time, error) {
	if len(seats) == 0 {
		return time.Now().Add(r.ttl), nil
	}

	keys := make([]string, len(seats))
	args := make([]interface{}, 0, len(seats)+2)
	args = append(args, owner, strconv.FormatInt(r.ttl.Milliseconds(), 10))
	for i, seat := range seats {
		keys[i] = holdKey(showtimeID, seat)
		args = append(args, seat)
	}

	expiresAt := time.Now().Add(r.ttl)
	taken, err := holdSeats.Run(ctx, r.client, keys, args...).StringSlice()
	if err != nil {
		return time.Time{}, fmt.Errorf("hold seats: %w", err)
	}
	if len(taken) > 0 {
		return time.Time{}, apperrors.NewSeatsUnavailableError(taken)
	}
	return expiresAt, nil
}

func (r *redisStore) Release(ctx context.Context, showtimeID uint, owner string, seats []string) error {
	var keys []string
	if len(seats) == 0 {
		var err error
		keys, err = r.scan(ctx, showtimeID)
		if err != nil {
			return err
		}
	} else {
		keys = make([]string, len(seats))
		for i, seat := range seats {
			keys[i] = holdKey(showtimeID, seat)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := releaseSeats.Run(ctx, r.client, keys, owner).Err(); err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}

func (r *redisStore) Holds(ctx context.Context, showtimeID uint) (map[string]string, error) {
	keys, err := r.scan(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	holds := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return holds, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read seat holds: %w", err)
	}
	prefix := showtimePrefix(showtimeID)
	for i, v := range values {
		// nil when the key expired between SCAN and MGET
		owner, ok := v.(string)
		if !ok {
			continue
		}
		holds[strings.TrimPrefix(keys[i], prefix)] = owner
	}
	return holds, nil
}

func (r *redisStore) scan(ctx context.Context, showtimeID uint) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, showtimePrefix(showtimeID)+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan seat holds: %w", err)
	}
	return keys, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
