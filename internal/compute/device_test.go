package compute

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcKernel struct {
	name string
	run  func(ctx context.Context) error
}

func (k funcKernel) Name() string                  { return k.name }
func (k funcKernel) Run(ctx context.Context) error { return k.run(ctx) }

func waitStatus(t *testing.T, d Device, h Handle) (Status, error) {
	t.Helper()
	var (
		status Status
		err    error
	)
	require.Eventually(t, func() bool {
		status, err = d.Poll(h)
		return status != Pending
	}, 2*time.Second, time.Millisecond)
	return status, err
}

func TestPoolDeviceCompletes(t *testing.T) {
	d := NewPoolDevice(2)
	defer d.Close()

	var ran atomic.Bool
	h := d.Submit(funcKernel{name: "ok", run: func(context.Context) error {
		ran.Store(true)
		return nil
	}})

	status, err := waitStatus(t, d, h)
	require.NoError(t, err)
	assert.Equal(t, Done, status)
	assert.True(t, ran.Load())

	// Status is sticky until release.
	status, _ = d.Poll(h)
	assert.Equal(t, Done, status)

	d.Release(h)
	status, err = d.Poll(h)
	assert.Equal(t, Failed, status)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.Equal(t, 0, d.InFlight())
}

func TestPoolDeviceReportsKernelError(t *testing.T) {
	d := NewPoolDevice(1)
	defer d.Close()

	boom := errors.New("boom")
	h := d.Submit(funcKernel{name: "bad", run: func(context.Context) error { return boom }})

	status, err := waitStatus(t, d, h)
	assert.Equal(t, Failed, status)
	assert.ErrorIs(t, err, boom)
}

func TestPoolDeviceRecoversPanics(t *testing.T) {
	d := NewPoolDevice(1)
	defer d.Close()

	h := d.Submit(funcKernel{name: "panics", run: func(context.Context) error { panic("kaboom") }})
	status, err := waitStatus(t, d, h)
	assert.Equal(t, Failed, status)
	assert.Error(t, err)
}

func TestPoolDeviceReleaseCancelsKernel(t *testing.T) {
	d := NewPoolDevice(1)
	defer d.Close()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	h := d.Submit(funcKernel{name: "slow", run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}})

	<-started
	d.Release(h)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("Release should cancel the kernel context")
	}

	status, err := d.Poll(h)
	assert.Equal(t, Failed, status)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestPoolDeviceSubmitAfterClose(t *testing.T) {
	d := NewPoolDevice(1)
	d.Close()

	h := d.Submit(funcKernel{name: "late", run: func(context.Context) error { return nil }})
	status, err := d.Poll(h)
	assert.Equal(t, Failed, status)
	assert.ErrorIs(t, err, ErrDeviceClosed)
}

func TestSyncDevice(t *testing.T) {
	d := NewSyncDevice()

	h := d.Submit(funcKernel{name: "fill", run: func(context.Context) error { return nil }})
	status, err := d.Poll(h)
	require.NoError(t, err)
	assert.Equal(t, Done, status)
	assert.Equal(t, 1, d.Submitted["fill"])

	bad := d.Submit(funcKernel{name: "fill", run: func(context.Context) error { return errors.New("nope") }})
	status, err = d.Poll(bad)
	assert.Equal(t, Failed, status)
	assert.Error(t, err)
	assert.Equal(t, 2, d.Submitted["fill"])

	d.Release(h)
	_, err = d.Poll(h)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.Equal(t, 1, d.InFlight())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "failed", Failed.String())
}
