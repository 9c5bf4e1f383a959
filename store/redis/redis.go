// Package redis implements a content store backend on top of Redis,
// keyed by content address. Concurrent Put calls for the same digest from
// independent daemon processes are serialized through a redsync
// distributed lock rather than relying on Redis's own atomicity for the
// (exists-check, set) pair.
package redis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/redigo"
	redigolib "github.com/gomodule/redigo/redis"

	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/store"
)

const keyPrefix = "brindle:blob:"

func init() {
	store.Register("redis", driver{})
}

type driver struct{}

func (driver) New(cfg *store.DriverConfig) (store.Store, error) {
	addr := cfg.Params["addr"]
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	pool := newPool(addr, cfg.Params["password"])
	rs := redsync.New(redigo.NewPool(pool))

	return &Store{pool: pool, redsync: rs}, nil
}

func newPool(addr, password string) *redigolib.Pool {
	return &redigolib.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redigolib.Conn, error) {
			opts := []redigolib.DialOption{
				redigolib.DialConnectTimeout(5 * time.Second),
			}
			if password != "" {
				opts = append(opts, redigolib.DialPassword(password))
			}
			return redigolib.Dial("tcp", addr, opts...)
		},
		TestOnBorrow: func(c redigolib.Conn, t time.Time) error {
			if time.Since(t) < 10*time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// Store is a content store backend on top of a Redis connection pool.
type Store struct {
	pool    *redigolib.Pool
	redsync *redsync.Redsync
}

func (s *Store) Put(ctx context.Context, b []byte) (string, error) {
	digest := store.Address(b)
	key := keyPrefix + digest

	mutex := s.redsync.NewMutex("lock:"+key, redsync.WithExpiry(5*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return "", err
	}
	defer mutex.UnlockContext(ctx)

	conn := s.pool.Get()
	defer conn.Close()

	exists, err := redigolib.Bool(conn.Do("EXISTS", key))
	if err != nil {
		return "", err
	}
	if exists {
		return digest, nil
	}

	_, err = conn.Do("SET", key, b)
	if err != nil {
		return "", err
	}
	return digest, nil
}

func (s *Store) Get(ctx context.Context, digest string) ([]byte, error) {
	conn := s.pool.Get()
	defer conn.Close()

	b, err := redigolib.Bytes(conn.Do("GET", keyPrefix+digest))
	if err == redigolib.ErrNil {
		return nil, errors.NewNotFound("store: no blob at digest " + digest)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Has(ctx context.Context, digest string) (bool, error) {
	conn := s.pool.Get()
	defer conn.Close()
	return redigolib.Bool(conn.Do("EXISTS", keyPrefix+digest))
}

func (s *Store) Delete(ctx context.Context, digest string) error {
	conn := s.pool.Get()
	defer conn.Close()
	_, err := conn.Do("DEL", keyPrefix+digest)
	return err
}

func (s *Store) Close() error {
	return s.pool.Close()
}

// ActiveConns reports the pool's current active connection count. Sampled
// on an interval into metrics.RedisActiveConns by cmd/brindled.
func (s *Store) ActiveConns() int {
	return s.pool.Stats().ActiveCount
}
