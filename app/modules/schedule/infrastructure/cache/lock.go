package schedulecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLockTTL bounds how long a crashed builder can hold a season.
const DefaultLockTTL = 10 * time.Minute

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SeasonLock is a Redis build lock: SET NX PX with a random token.
type SeasonLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeasonLock(client *redis.Client, ttl time.Duration) *SeasonLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &SeasonLock{client: client, ttl: ttl}
}

var _ scheduleservice.BuildLock = (*SeasonLock)(nil)

func lockKey(seasonID uuid.UUID) string {
	return fmt.Sprintf("schedule:build-lock:%s", seasonID)
}

// TryLock takes the season's lock or returns scheduleservice.ErrBuildInProgress.
func (l *SeasonLock) TryLock(ctx context.Context, seasonID uuid.UUID) (func(context.Context) error, error) {
	key := lockKey(seasonID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("schedulecache.TryLock: %w", err)
	}
	if !ok {
		return nil, scheduleservice.ErrBuildInProgress
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("schedulecache.Unlock: %w", err)
		}
		return nil
	}, nil
}

// LocalLock guards seasons within one process. Used when Redis is not
// configured.
type LocalLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[uuid.UUID]struct{})}
}

var _ scheduleservice.BuildLock = (*LocalLock)(nil)

func (l *LocalLock) TryLock(_ context.Context, seasonID uuid.UUID) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[seasonID]; busy {
		return nil, scheduleservice.ErrBuildInProgress
	}
	l.held[seasonID] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, seasonID)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
