package compute

import (
	"context"
	"fmt"
	"sync"

	"VoxelStrata/internal/logger"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

type poolTask struct {
	task   pond.Task
	cancel context.CancelFunc
	name   string
}

// PoolDevice is the CPU backend: kernels run on a bounded worker pool.
type PoolDevice struct {
	pool   pond.Pool
	mu     sync.Mutex
	tasks  map[Handle]*poolTask
	next   Handle
	closed bool
}

// NewPoolDevice creates a device backed by workers goroutines.
func NewPoolDevice(workers int) *PoolDevice {
	if workers <= 0 {
		workers = 1
	}
	return &PoolDevice{
		pool:  pond.NewPool(workers),
		tasks: make(map[Handle]*poolTask),
	}
}

func (d *PoolDevice) Submit(k Kernel) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	h := d.next
	if d.closed {
		d.tasks[h] = &poolTask{task: failedTask(ErrDeviceClosed), cancel: func() {}, name: k.Name()}
		return h
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := d.pool.SubmitErr(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("kernel %s panicked: %v", k.Name(), r)
			}
		}()
		if err := ctx.Err(); err != nil {
			return err
		}
		return k.Run(ctx)
	})
	d.tasks[h] = &poolTask{task: task, cancel: cancel, name: k.Name()}
	return h
}

func (d *PoolDevice) Poll(h Handle) (Status, error) {
	d.mu.Lock()
	t, ok := d.tasks[h]
	d.mu.Unlock()
	if !ok {
		return Failed, ErrUnknownHandle
	}

	select {
	case <-t.task.Done():
	default:
		return Pending, nil
	}

	if err := t.task.Wait(); err != nil {
		return Failed, fmt.Errorf("%s: %w", t.name, err)
	}
	return Done, nil
}

func (d *PoolDevice) Release(h Handle) {
	d.mu.Lock()
	t, ok := d.tasks[h]
	delete(d.tasks, h)
	d.mu.Unlock()

	if ok {
		t.cancel()
	}
}

// InFlight returns the number of handles that have not been released.
func (d *PoolDevice) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Close cancels outstanding kernels and waits for the workers to drain.
func (d *PoolDevice) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, t := range d.tasks {
		t.cancel()
	}
	d.mu.Unlock()

	d.pool.StopAndWait()
	logger.Log.Debug("Compute pool stopped", zap.Int("abandoned", d.InFlight()))
}

type doneTask struct {
	done chan struct{}
	err  error
}

func failedTask(err error) pond.Task {
	t := &doneTask{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *doneTask) Done() <-chan struct{} { return t.done }
func (t *doneTask) Wait() error           { return t.err }
