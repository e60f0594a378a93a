package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(quiet())
	err := s.Add("images", "not a cron", func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "schedule images")
}

func TestAddAcceptsDescriptor(t *testing.T) {
	s := New(quiet())
	require.NoError(t, s.Add("images", "@daily", func(context.Context) error { return nil }))
	assert.Len(t, s.cron.Entries(), 1)
}

func TestRunInvokesJobWithDeadline(t *testing.T) {
	s := New(quiet())
	var hadDeadline bool
	s.run("images", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return errors.New("redis unavailable")
	})
	assert.True(t, hadDeadline)
}

func TestStopReturnsWhenIdle(t *testing.T) {
	s := New(quiet())
	s.Start()
	s.Stop(context.Background())
}
