// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package audit

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/zintix-labs/vaultways/corefmt"
	"github.com/zintix-labs/vaultways/errs"
)

const keyPrefix = "vaultways:round:"

// RedisStore 以 zstd 壓縮後的 JSON 存入 Redis，並設定保存期限
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisStore ttl <= 0 代表不過期
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient 依位址建立連線；多個位址時為叢集模式
func NewRedisClient(addrs []string, password string, db int) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: password,
		DB:       db,
	})
}

func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Round.RoundID == "" {
		return errs.NewWarn("audit record without round id")
	}
	blob, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, Key(rec.Round.RoundID), blob, s.ttl).Err(); err != nil {
		return errs.Wrap(err, "audit put")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, roundID string) (*Record, error) {
	blob, err := s.rdb.Get(ctx, Key(roundID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err, "audit get")
	}
	return decodeRecord(blob)
}

// Ping 啟動時確認連線
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errs.Wrap(err, "redis ping")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func Key(roundID string) string {
	return keyPrefix + roundID
}

func encodeRecord(rec *Record) ([]byte, error) {
	raw, err := jsoniter.ConfigFastest.Marshal(rec)
	if err != nil {
		return nil, errs.Wrap(err, "audit encode")
	}
	return corefmt.Compress(raw)
}

func decodeRecord(blob []byte) (*Record, error) {
	raw, err := corefmt.Decompress(blob)
	if err != nil {
		return nil, err
	}
	rec := new(Record)
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, rec); err != nil {
		return nil, errs.Wrap(err, "audit decode")
	}
	return rec, nil
}
