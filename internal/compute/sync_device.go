package compute

import (
	"context"
	"fmt"
)

type syncResult struct {
	name string
	err  error
}

// SyncDevice runs every kernel inline inside Submit. Results are still only
// visible through Poll, so callers exercise the same suspend/resume path as
// with an asynchronous device, one tick apart.
type SyncDevice struct {
	results map[Handle]syncResult
	next    Handle

	// Submitted counts kernels by name.
	Submitted map[string]int
}

func NewSyncDevice() *SyncDevice {
	return &SyncDevice{
		results:   make(map[Handle]syncResult),
		Submitted: make(map[string]int),
	}
}

func (d *SyncDevice) Submit(k Kernel) Handle {
	d.next++
	d.Submitted[k.Name()]++

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("kernel %s panicked: %v", k.Name(), r)
			}
		}()
		return k.Run(context.Background())
	}()
	d.results[d.next] = syncResult{name: k.Name(), err: err}
	return d.next
}

func (d *SyncDevice) Poll(h Handle) (Status, error) {
	r, ok := d.results[h]
	if !ok {
		return Failed, ErrUnknownHandle
	}
	if r.err != nil {
		return Failed, fmt.Errorf("%s: %w", r.name, r.err)
	}
	return Done, nil
}

func (d *SyncDevice) Release(h Handle) {
	delete(d.results, h)
}

func (d *SyncDevice) Close() {
	d.results = make(map[Handle]syncResult)
}

// InFlight returns the number of handles that have not been released.
func (d *SyncDevice) InFlight() int {
	return len(d.results)
}
