package predictor

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Chain asks each predictor in turn and returns the first legal suggestion
type Chain struct {
	predictors []Predictor
	log        zerolog.Logger
}

func NewChain(log zerolog.Logger, predictors ...Predictor) *Chain {
	return &Chain{predictors: predictors, log: log}
}

func (c *Chain) Predict(ctx context.Context, fen string) (string, error) {
	if _, err := ParsePosition(fen); err != nil {
		return "", err
	}

	var result *multierror.Error
	for _, p := range c.predictors {
		name := fmt.Sprint(p)

		move, err := p.Predict(ctx, fen)
		switch {
		case errors.Is(err, ErrNoLegalMoves):
			return "", err
		case err != nil:
			c.log.Warn().Err(err).Str("predictor", name).Msg("predictor failed, trying next")
			result = multierror.Append(result, errors.Wrap(err, name))
			continue
		case !IsLegal(fen, move):
			c.log.Warn().Str("predictor", name).Str("move", move).Msg("illegal suggestion, trying next")
			result = multierror.Append(result, errors.Wrapf(ErrIllegalMove, "%s: %s", name, move))
			continue
		}

		c.log.Debug().Str("predictor", name).Str("move", move).Msg("predicted")
		return move, nil
	}

	if result == nil {
		return "", errors.New("no predictors configured")
	}
	return "", result.ErrorOrNil()
}

// Len is the number of predictors in the chain
func (c *Chain) Len() int {
	return len(c.predictors)
}
