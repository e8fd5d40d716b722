package redis

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"palma-lending/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNoRound is returned when no round has been published for an asset.
var ErrNoRound = errors.New("no oracle round published")

// pushRoundScript allocates the next round id and overwrites the latest round
// in one step so readers never see a half-written hash.
var pushRoundScript = goredis.NewScript(`
local id = redis.call('INCR', KEYS[1])
redis.call('HSET', KEYS[2],
	'round_id', id,
	'answer', ARGV[1],
	'started_at', ARGV[2],
	'updated_at', ARGV[2],
	'answered_in_round', id)
return id
`)

// RoundStore implements ports.RoundStore with one hash per asset.
type RoundStore struct {
	client *goredis.Client
	prefix string
}

// NewRoundStore creates a Redis-backed oracle round store.
func NewRoundStore(client *goredis.Client) *RoundStore {
	return &RoundStore{
		client: client,
		prefix: "oracle:round:",
	}
}

func (s *RoundStore) latestKey(asset domain.Asset) string {
	return s.prefix + asset.Hex()
}

func (s *RoundStore) seqKey(asset domain.Asset) string {
	return s.prefix + asset.Hex() + ":seq"
}

// PushRound publishes answer as the asset's latest round.
func (s *RoundStore) PushRound(ctx context.Context, asset domain.Asset, answer *big.Int, at time.Time) (domain.RoundData, error) {
	if answer == nil {
		return domain.RoundData{}, fmt.Errorf("push round for %s: nil answer", asset.Hex())
	}
	at = at.UTC().Truncate(time.Second)

	id, err := pushRoundScript.Run(ctx, s.client,
		[]string{s.seqKey(asset), s.latestKey(asset)},
		answer.String(), at.Unix(),
	).Int64()
	if err != nil {
		return domain.RoundData{}, fmt.Errorf("redis push round: %w", err)
	}

	return domain.RoundData{
		RoundID:         uint64(id),
		Answer:          new(big.Int).Set(answer),
		StartedAt:       at,
		UpdatedAt:       at,
		AnsweredInRound: uint64(id),
	}, nil
}

// LatestRound returns the most recently pushed round, or ErrNoRound.
func (s *RoundStore) LatestRound(ctx context.Context, asset domain.Asset) (domain.RoundData, error) {
	fields, err := s.client.HGetAll(ctx, s.latestKey(asset)).Result()
	if err != nil {
		return domain.RoundData{}, fmt.Errorf("redis latest round: %w", err)
	}
	if len(fields) == 0 {
		return domain.RoundData{}, fmt.Errorf("%s: %w", asset.Hex(), ErrNoRound)
	}

	var rd domain.RoundData
	answer, ok := new(big.Int).SetString(fields["answer"], 10)
	if !ok {
		return rd, fmt.Errorf("round for %s: malformed answer %q", asset.Hex(), fields["answer"])
	}
	rd.Answer = answer
	if rd.RoundID, err = strconv.ParseUint(fields["round_id"], 10, 64); err != nil {
		return rd, fmt.Errorf("round for %s: round_id: %w", asset.Hex(), err)
	}
	if rd.AnsweredInRound, err = strconv.ParseUint(fields["answered_in_round"], 10, 64); err != nil {
		return rd, fmt.Errorf("round for %s: answered_in_round: %w", asset.Hex(), err)
	}
	if rd.StartedAt, err = unixField(fields["started_at"]); err != nil {
		return rd, fmt.Errorf("round for %s: started_at: %w", asset.Hex(), err)
	}
	if rd.UpdatedAt, err = unixField(fields["updated_at"]); err != nil {
		return rd, fmt.Errorf("round for %s: updated_at: %w", asset.Hex(), err)
	}
	return rd, nil
}

func unixField(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
