// Package referral draws short referral codes and retries on collision.
package referral

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@#$&"
	DefaultLength      = 6
	DefaultPrefix      = "REF-"
	DefaultMaxAttempts = 20
)

var ErrExhausted = errors.New("referral code space exhausted")

// ExistsFunc reports whether code is already assigned in the target table.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	Alphabet    string
	Length      int
	Prefix      string
	MaxAttempts int

	// draw is swapped in tests to force collisions.
	draw func(alphabet string, size int) (string, error)
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		Alphabet:    DefaultAlphabet,
		Length:      DefaultLength,
		Prefix:      DefaultPrefix,
		MaxAttempts: maxAttempts,
		draw:        gonanoid.Generate,
	}
}

// WithDraw replaces the random source.
func (g *Generator) WithDraw(draw func(alphabet string, size int) (string, error)) *Generator {
	g.draw = draw
	return g
}

// Draw returns one candidate code without checking uniqueness.
func (g *Generator) Draw() (string, error) {
	body, err := g.draw(g.Alphabet, g.Length)
	if err != nil {
		return "", fmt.Errorf("failed to draw referral code: %w", err)
	}
	return g.Prefix + body, nil
}

// Generate draws codes until exists reports a free one, giving up after
// MaxAttempts collisions.
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 1; attempt <= g.MaxAttempts; attempt++ {
		code, err := g.Draw()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check referral code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, g.MaxAttempts)
}
