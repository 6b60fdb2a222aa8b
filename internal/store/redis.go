package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"jokerd/internal/game"
)

// Key prefixes, shared with external tooling that inspects the store.
const (
	keyGame         = "game:"
	keyPlayerRoom   = "player:room:"
	keyPlayerSocket = "player:socket:"
	keyRoomPlayers  = "room:players:"
	keyAudit        = "game:audit:"
)

// RedisStore mirrors game state into Redis. Every method returns the
// underlying error so the caller can log and move on; nothing here
// retries or blocks gameplay.
type RedisStore struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisStore connects to the given URL (redis://...) and verifies the
// connection once.
func NewRedisStore(ctx context.Context, url string, logger *log.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	logger.Info("connected to redis", "addr", opts.Addr)
	return &RedisStore{client: client, logger: logger.WithPrefix("store")}, nil
}

func (s *RedisStore) SaveState(ctx context.Context, roomID string, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, keyGame+roomID, payload, GameStateTTL)
	for _, p := range state.Players {
		pipe.SAdd(ctx, keyRoomPlayers+roomID, p.ID)
	}
	pipe.Expire(ctx, keyRoomPlayers+roomID, GameStateTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) LoadState(ctx context.Context, roomID string) (*game.State, error) {
	payload, err := s.client.Get(ctx, keyGame+roomID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &ErrNotFound{Key: keyGame + roomID}
	}
	if err != nil {
		return nil, err
	}
	var state game.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) SetPlayerRoom(ctx context.Context, playerID, roomID string) error {
	return s.client.Set(ctx, keyPlayerRoom+playerID, roomID, PlayerSessionTTL).Err()
}

func (s *RedisStore) GetPlayerRoom(ctx context.Context, playerID string) (string, error) {
	roomID, err := s.client.Get(ctx, keyPlayerRoom+playerID).Result()
	if errors.Is(err, redis.Nil) {
		return "", &ErrNotFound{Key: keyPlayerRoom + playerID}
	}
	return roomID, err
}

func (s *RedisStore) SetPlayerConn(ctx context.Context, playerID, connID string) error {
	return s.client.Set(ctx, keyPlayerSocket+playerID, connID, PlayerSessionTTL).Err()
}

func (s *RedisStore) AppendAudit(ctx context.Context, roomID string, entry AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, keyAudit+roomID, payload)
	pipe.Expire(ctx, keyAudit+roomID, AuditTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) AuditLog(ctx context.Context, roomID string) ([]AuditEntry, error) {
	raw, err := s.client.LRange(ctx, keyAudit+roomID, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]AuditEntry, 0, len(raw))
	for _, item := range raw {
		var entry AuditEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			s.logger.Warn("skipping malformed audit entry", "roomId", roomID, "err", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) CleanupRoom(ctx context.Context, roomID string, playerIDs []string) error {
	keys := []string{keyGame + roomID, keyRoomPlayers + roomID, keyAudit + roomID}
	for _, id := range playerIDs {
		keys = append(keys, keyPlayerRoom+id, keyPlayerSocket+id)
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
