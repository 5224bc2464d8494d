// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/constants"
)

// RedisSessionRepository implements SessionRepository using Redis.
//
// One key per user holds the whole session document. Redis key expiry is the
// refresh token expiry, so stale sessions clean themselves up.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis-backed SessionRepository.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(userUUID string) string {
	return constants.RedisPrefixSession + userUUID
}

/*
Replace swaps the user's active session for a new one.

Description: Deletes the previous session key before writing the new
document with its TTL. A refresh token issued before this call can no
longer match the stored session.

Parameters:
  - context: context.Context
  - userUUID: string
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Serialization or execution errors
*/
func (repository *RedisSessionRepository) Replace(context context.Context, userUUID string, session *Session, ttl time.Duration) error {
	key := sessionKey(userUUID)

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_replace_delete_failed: %w", err)
	}

	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_replace_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the user's active session.

Description: A missing key means there is no live session for the user, so
any refresh token presented against it is invalid by definition.

Parameters:
  - context: context.Context
  - userUUID: string

Returns:
  - *Session: Hydrated session document
  - error: apperr.ErrInvalidToken or connectivity errors
*/
func (repository *RedisSessionRepository) Get(context context.Context, userUUID string) (*Session, error) {
	key := sessionKey(userUUID)

	payload, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}

	return session, nil
}

/*
Delete removes the user's active session.

Parameters:
  - context: context.Context
  - userUUID: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Delete(context context.Context, userUUID string) error {
	if err := repository.client.Del(context, sessionKey(userUUID)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return nil
}
