package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "checklist/pkg/domain-errors"
)

func TestRunConcurrentCategorizes(t *testing.T) {
	res := RunConcurrent(8, func(idx int) error {
		switch idx % 4 {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeUnavailable, "down")
		case 2:
			return dErrors.New(dErrors.CodeTimeout, "slow")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(2), res.Successes)
	assert.Equal(t, int32(2), res.Unavailable)
	assert.Equal(t, int32(2), res.Timeouts)
	assert.Equal(t, int32(2), res.Errors)
	assert.Equal(t, int32(8), res.Total())
}

func TestRunConcurrentCtxPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	res := RunConcurrentCtx(ctx, 3, func(ctx context.Context, _ int) error {
		if ctx.Value(key{}) != "v" {
			return errors.New("missing value")
		}
		return nil
	})

	assert.Equal(t, int32(3), res.Successes)
}
