// Package compute abstracts the device that runs density fill and surface
// extraction kernels. Chunks submit a kernel, keep the handle and poll it on
// later ticks; nothing on the tick thread ever blocks on a kernel.
package compute

import (
	"context"
	"errors"
)

var (
	ErrUnknownHandle = errors.New("compute: unknown or released handle")
	ErrDeviceClosed  = errors.New("compute: device closed")
)

// Kernel is one unit of device work. Run must only write to buffers the
// kernel owns; results are read back by the submitter after Poll reports Done.
type Kernel interface {
	Name() string
	Run(ctx context.Context) error
}

type Handle uint64

type Status int

const (
	Pending Status = iota
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Device runs kernels asynchronously.
//
// Poll on a finished handle keeps returning the same status until Release.
// Release abandons the task: its context is cancelled and the handle is
// forgotten, so a late completion is never observed by anyone.
type Device interface {
	Submit(k Kernel) Handle
	Poll(h Handle) (Status, error)
	Release(h Handle)
	Close()
}
