package edit

import (
	"fmt"

	"VoxelStrata/internal/density"

	"github.com/google/uuid"
)

// Request is one chunk's copy of a submitted operation. Copies fanned out
// to several chunks share an ID but never an Operation value.
type Request struct {
	ID uuid.UUID
	Op Operation

	inProgress bool
	applied    bool
}

func NewRequest(op Operation) *Request {
	return &Request{ID: uuid.New(), Op: op}
}

// Begin marks the request as being applied. Processing a request twice is
// a logic error and panics.
func (r *Request) Begin() {
	if r.inProgress || r.applied {
		panic(fmt.Sprintf("edit: request %s processed twice", r.ID))
	}
	r.inProgress = true
}

func (r *Request) Finish() {
	r.inProgress = false
	r.applied = true
}

func (r *Request) InProgress() bool { return r.inProgress }

func (r *Request) Applied() bool { return r.applied }

// ApplyTo runs the operation against f exactly once.
func (r *Request) ApplyTo(f *density.Field) {
	r.Begin()
	r.Op.Apply(f)
	r.Finish()
}

// CloneFor returns a fresh, unapplied request with a cloned operation for
// delivery to another chunk.
func (r *Request) CloneFor() *Request {
	return &Request{ID: r.ID, Op: r.Op.Clone()}
}
