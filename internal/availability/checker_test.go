package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	count int
	err   error
}

func (s stubCounter) CountActiveOn(_ context.Context, _ string, _ time.Time) (int, error) {
	return s.count, s.err
}

func TestRepoCheckerAvailable(t *testing.T) {
	c := NewRepoChecker(stubCounter{count: 0})

	outcome, err := c.Check(context.Background(), "p1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Available, outcome)
}

func TestRepoCheckerBookedOut(t *testing.T) {
	c := NewRepoChecker(stubCounter{count: 1})

	outcome, err := c.Check(context.Background(), "p1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Unavailable, outcome)
}

func TestRepoCheckerPropagatesError(t *testing.T) {
	c := NewRepoChecker(stubCounter{err: errors.New("db down")})

	_, err := c.Check(context.Background(), "p1", time.Now())
	assert.Error(t, err)
}
