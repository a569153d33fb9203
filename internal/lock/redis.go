package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// compare-and-delete: yalnızca token sahibi anahtarı silebilir
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var errNoRedisClient = errors.New("lock: redis client not configured")

// Redis birden fazla API örneği arasında paylaşılan Locker. Anahtarlar
// "<namespace>:lock:<key>" biçiminde tutulur.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis namespace boşsa "venue" kullanır.
func NewRedis(client *redis.Client, namespace string) *Redis {
	namespace = strings.Trim(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		namespace = "venue"
	}
	return &Redis{client: client, prefix: namespace + ":lock:"}
}

func (l *Redis) key(k string) string { return l.prefix + k }

func (l *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errNoRedisClient
	}
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lock %q: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release token artık anahtarın sahibi değilse (süresi dolmuş, başkası almış) ErrNotHeld döner.
func (l *Redis) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	n, err := releaseScript.Run(ctx, l.client, []string{l.key(key)}, token).Int64()
	if err != nil {
		return fmt.Errorf("unlock %q: %w", key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

var (
	_ Locker = (*Memory)(nil)
	_ Locker = (*Redis)(nil)
)
