package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingIntake struct {
	calls int
	stats *IntakeStats
	err   error
}

func (c *countingIntake) Poll(ctx context.Context) (*IntakeStats, error) {
	c.calls++
	return c.stats, c.err
}

type fakeLock struct {
	acquired bool
	err      error
	unlocked int
}

func (l *fakeLock) lock(ctx context.Context) (bool, func(context.Context) error, error) {
	if l.err != nil {
		return false, nil, l.err
	}
	if !l.acquired {
		return false, nil, nil
	}
	return true, func(context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

func TestPoller_RunOnce(t *testing.T) {
	intake := &countingIntake{stats: &IntakeStats{Total: 2, New: 2}}
	lock := &fakeLock{acquired: true}
	p := NewPoller(intake, time.Minute, lock.lock, nil)

	stats, err := p.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 1, intake.calls)
	assert.Equal(t, 1, lock.unlocked)
}

func TestPoller_RunOnce_LockHeldElsewhere(t *testing.T) {
	intake := &countingIntake{}
	lock := &fakeLock{acquired: false}
	p := NewPoller(intake, time.Minute, lock.lock, nil)

	stats, err := p.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Nil(t, stats)
	assert.Equal(t, 0, intake.calls)
}

func TestPoller_RunOnce_LockError(t *testing.T) {
	intake := &countingIntake{}
	lock := &fakeLock{err: errors.New("pool closed")}
	p := NewPoller(intake, time.Minute, lock.lock, nil)

	_, err := p.RunOnce(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, intake.calls)
}

func TestPoller_RunOnce_ReleasesLockOnError(t *testing.T) {
	intake := &countingIntake{stats: &IntakeStats{Total: 1, Errors: 1}, err: errors.New("imap down")}
	lock := &fakeLock{acquired: true}
	p := NewPoller(intake, time.Minute, lock.lock, nil)

	stats, err := p.RunOnce(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, lock.unlocked)
}

func TestPoller_RunOnce_WithoutLock(t *testing.T) {
	intake := &countingIntake{stats: &IntakeStats{}}
	p := NewPoller(intake, time.Minute, nil, nil)

	_, err := p.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, intake.calls)
}

func TestPoller_StartRejectsShortInterval(t *testing.T) {
	p := NewPoller(&countingIntake{}, 500*time.Millisecond, nil, nil)

	err := p.Start()

	assert.Error(t, err)
}

func TestPoller_StartStop(t *testing.T) {
	p := NewPoller(&countingIntake{}, time.Hour, nil, nil)

	require.NoError(t, p.Start())
	assert.Error(t, p.Start(), "second start must fail")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Stop(ctx)
	p.Stop(ctx)
}
