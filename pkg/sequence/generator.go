package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/redis/go-redis/v9"
)

// keyAlphabet drops characters that are easy to misread (0/O, 1/I).
const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// LicenseKey returns a random key in the XXXX-XXXX-XXXX-XXXX layout.
func LicenseKey() (string, error) {
	groups := make([]string, 4)
	for i := range groups {
		g, err := randomAlphaNumeric(4)
		if err != nil {
			return "", err
		}
		groups[i] = g
	}
	return strings.Join(groups, "-"), nil
}

// Generator hands out batch codes that label one seeding run.
type Generator interface {
	NextBatchCode(ctx context.Context, owner string) (string, error)
}

type RedisGenerator struct {
	rdb *redis.Client
}

func NewRedisGenerator(rdb *redis.Client) Generator {
	return &RedisGenerator{rdb: rdb}
}

func (g *RedisGenerator) NextBatchCode(ctx context.Context, owner string) (string, error) {
	seq, err := g.rdb.Incr(ctx, fmt.Sprintf("seq:batch:%s", owner)).Result()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("B%04d", seq), nil
}

func randomAlphaNumeric(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = keyAlphabet[num.Int64()]
	}
	return string(b), nil
}
