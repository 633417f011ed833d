package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"jobboard/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expirerFunc func(ctx context.Context) (int64, error)

func (f expirerFunc) ExpireOverdue(ctx context.Context) (int64, error) { return f(ctx) }

func TestSweepExpiredOffers_CountsClosedOffers(t *testing.T) {
	before := testutil.ToFloat64(observability.OffersExpired)

	n := SweepExpiredOffers(context.Background(), expirerFunc(func(ctx context.Context) (int64, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return 4, nil
	}))
	assert.Equal(t, int64(4), n)
	assert.Equal(t, before+4, testutil.ToFloat64(observability.OffersExpired))

	n = SweepExpiredOffers(context.Background(), expirerFunc(func(context.Context) (int64, error) {
		return 0, errors.New("db down")
	}))
	assert.Zero(t, n)
	assert.Equal(t, before+4, testutil.ToFloat64(observability.OffersExpired))
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	err := s.ScheduleOfferExpiry("every now and then", expirerFunc(func(context.Context) (int64, error) { return 0, nil }))
	require.Error(t, err)
	assert.NoError(t, s.ScheduleOfferExpiry("", nil))
}

func TestScheduler_RunsSweep(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	require.NoError(t, s.ScheduleOfferExpiry("@every 1s", expirerFunc(func(context.Context) (int64, error) {
		runs.Add(1)
		return 0, nil
	})))
	s.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
