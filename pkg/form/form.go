// Package form implements a generic create/edit/copy/delete form controller
// on top of a crudkit service.
package form

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

// Config configures a Form.
type Config[T, TID any] struct {
	// Service performs the backend calls. Required.
	Service Service[T, TID]
	// State is the initial state. The zero value is StateCreate.
	State State
	// Record is the initial record. When nil, NewRecord provides it.
	Record *T
	// Identifier addresses the record to load, edit or delete.
	Identifier *crudkit.Identifier[TID]
	// NewRecord creates an empty record. Defaults to the zero value.
	NewRecord func() T
	// NewIdentifier creates the identifier installed by Reset and Cancel.
	// Defaults to none.
	NewIdentifier func() *crudkit.Identifier[TID]
	// Hooks are the lifecycle callbacks.
	Hooks Hooks[T]
	// Logger receives debug and warning entries.
	Logger crudkit.Logger
}

// Form drives the lifecycle of one record. A Form is not safe for concurrent
// use.
type Form[T, TID any] struct {
	service       Service[T, TID]
	state         State
	record        T
	identifier    *crudkit.Identifier[TID]
	blobs         []crudkit.BlobData
	hooks         Hooks[T]
	logger        crudkit.Logger
	newRecord     func() T
	newIdentifier func() *crudkit.Identifier[TID]
	observers     []Observer

	response       crudkit.ResponseResult[crudkit.APIResponse[T]]
	addResponse    crudkit.ResponseResult[crudkit.APIResponse[crudkit.RecordWithBlobs[T]]]
	updateResponse crudkit.ResponseResult[crudkit.APIResponse[crudkit.RecordUpdateWithBlobs[T]]]
}

// New creates a Form.
func New[T, TID any](config Config[T, TID]) (*Form[T, TID], error) {
	if config.Service == nil {
		return nil, ErrServiceRequired
	}

	f := &Form[T, TID]{
		service:       config.Service,
		state:         config.State,
		hooks:         config.Hooks,
		logger:        config.Logger,
		newRecord:     config.NewRecord,
		newIdentifier: config.NewIdentifier,
	}

	if f.logger == nil {
		f.logger = crudkit.NopLogger()
	}

	if f.newRecord == nil {
		f.newRecord = func() T {
			var zero T

			return zero
		}
	}

	if f.newIdentifier == nil {
		f.newIdentifier = func() *crudkit.Identifier[TID] { return nil }
	}

	if config.Record != nil {
		f.record = *config.Record
	} else {
		f.record = f.newRecord()
	}

	if config.Identifier != nil {
		id := *config.Identifier
		f.identifier = &id
	}

	return f, nil
}

// Hooks returns the hooks for modification.
func (f *Form[T, TID]) Hooks() *Hooks[T] {
	return &f.hooks
}

// Observe registers an observer for lifecycle events.
func (f *Form[T, TID]) Observe(observer Observer) {
	if observer != nil {
		f.observers = append(f.observers, observer)
	}
}

// State returns the current state.
func (f *Form[T, TID]) State() State {
	return f.state
}

// Record returns the current record.
func (f *Form[T, TID]) Record() T {
	return f.record
}

// SetRecord replaces the current record.
func (f *Form[T, TID]) SetRecord(record T) {
	f.record = record
}

// Identifier returns the current identifier, or nil when none is set.
func (f *Form[T, TID]) Identifier() *crudkit.Identifier[TID] {
	return f.identifier
}

// SetIdentifier sets the identifier used by Load and Delete.
func (f *Form[T, TID]) SetIdentifier(id crudkit.Identifier[TID]) {
	f.identifier = &id
}

// Blobs returns the pending attachments.
func (f *Form[T, TID]) Blobs() []crudkit.BlobData {
	return append([]crudkit.BlobData(nil), f.blobs...)
}

// AddBlob queues attachments for the next Save.
func (f *Form[T, TID]) AddBlob(blobs ...crudkit.BlobData) {
	f.blobs = append(f.blobs, blobs...)
}

// Response returns the last load, save or delete response of the plain path.
func (f *Form[T, TID]) Response() crudkit.ResponseResult[crudkit.APIResponse[T]] {
	return f.response
}

// AddWithBlobsResponse returns the last multipart create response.
func (f *Form[T, TID]) AddWithBlobsResponse() crudkit.ResponseResult[crudkit.APIResponse[crudkit.RecordWithBlobs[T]]] {
	return f.addResponse
}

// UpdateWithBlobsResponse returns the last multipart update response.
func (f *Form[T, TID]) UpdateWithBlobsResponse() crudkit.ResponseResult[crudkit.APIResponse[crudkit.RecordUpdateWithBlobs[T]]] {
	return f.updateResponse
}

// Load fetches the record addressed by the identifier. Without an identifier
// nothing is fetched and only the OnLoad Completed hook fires.
func (f *Form[T, TID]) Load(ctx context.Context) {
	if f.identifier != nil {
		f.logger.Debug("Loading record", map[string]interface{}{"state": f.state.String()})

		f.response = f.service.GetOne(ctx, *f.identifier, crudkit.EmptyValidator{})
		o := classify(f.response)
		if o == outcomeSucceeded {
			f.record = f.response.Response.Data
		}

		f.hooks.OnLoad.dispatch(o, f.response)

		notify(ctx, f, EventLoad, "GetOne", f.response)
	}

	f.hooks.OnLoad.complete(f.response)
}

// Save creates or updates the record depending on the state. Pending blobs
// switch to the multipart path and are dropped once it succeeds, since their
// readers have been consumed. Save returns ErrInvalidState outside the
// Create, Copy and Edit states; backend outcomes are reported through hooks
// and Response.
func (f *Form[T, TID]) Save(ctx context.Context, validator crudkit.Validator) error {
	if !f.state.CanSave() {
		return fmt.Errorf("%w: cannot save in %s state", ErrInvalidState, f.state)
	}

	var run func()
	if f.state.creates() {
		run = func() { f.create(ctx, validator) }
	} else {
		run = func() { f.update(ctx, validator) }
	}

	f.intercept(ctx, "save", f.hooks.OnBeforeSave, run)

	return nil
}

func (f *Form[T, TID]) create(ctx context.Context, validator crudkit.Validator) {
	if len(f.blobs) > 0 {
		f.addResponse = f.service.AddWithBlobs(ctx, f.record, validator, f.blobs)
		f.hooks.OnResponseAddWithBlobs.complete(f.addResponse)

		o := classify(f.addResponse)
		if o == outcomeSucceeded {
			f.record = f.addResponse.Response.Data.Record
			f.state = StateEdit
			f.blobs = nil
		}

		f.hooks.OnResponseAddWithBlobs.dispatch(o, f.addResponse)

		notify(ctx, f, EventSave, "AddWithBlobs", f.addResponse)
	} else {
		f.response = f.service.Add(ctx, f.record, validator)
		f.handleResponse(StateEdit)
		notify(ctx, f, EventSave, "Add", f.response)
	}

	call(f.hooks.OnAfterSave)
}

func (f *Form[T, TID]) update(ctx context.Context, validator crudkit.Validator) {
	if len(f.blobs) > 0 {
		f.updateResponse = f.service.UpdateWithBlobs(ctx, f.record, validator, f.blobs)
		f.hooks.OnResponseUpdateWithBlobs.complete(f.updateResponse)

		o := classify(f.updateResponse)
		if o == outcomeSucceeded {
			f.record = f.updateResponse.Response.Data.Record
			f.state = StateEdit
			f.blobs = nil
		}

		f.hooks.OnResponseUpdateWithBlobs.dispatch(o, f.updateResponse)

		notify(ctx, f, EventSave, "UpdateWithBlobs", f.updateResponse)
	} else {
		f.response = f.service.Update(ctx, f.record, validator)
		f.handleResponse(StateEdit)
		notify(ctx, f, EventSave, "Update", f.response)
	}

	call(f.hooks.OnAfterSave)
}

// handleResponse applies a plain response and moves to next on success.
func (f *Form[T, TID]) handleResponse(next State) {
	f.hooks.OnResponse.complete(f.response)

	o := classify(f.response)
	if o == outcomeSucceeded {
		f.record = f.response.Response.Data
		f.state = next
	}

	f.hooks.OnResponse.dispatch(o, f.response)
}

// Delete deletes the record addressed by the identifier. It is only allowed
// in the Delete state and moves the form to Deleted on success.
func (f *Form[T, TID]) Delete(ctx context.Context, validator crudkit.Validator) error {
	if !f.state.CanDelete() {
		return fmt.Errorf("%w: cannot delete in %s state", ErrInvalidState, f.state)
	}

	if f.identifier == nil {
		return ErrIdentifierRequired
	}

	id := *f.identifier

	f.intercept(ctx, "delete", f.hooks.OnBeforeDelete, func() {
		f.response = f.service.Delete(ctx, id, validator)
		f.handleResponse(StateDeleted)
		notify(ctx, f, EventDelete, "Delete", f.response)

		if f.hooks.OnAfterDelete != nil {
			f.hooks.OnAfterDelete(f.response.Response.Data)
		}
	})

	return nil
}

// Reset replaces the record and identifier with fresh instances and drops
// pending blobs.
func (f *Form[T, TID]) Reset(ctx context.Context) {
	f.intercept(ctx, "reset", f.hooks.OnBeforeReset, func() {
		f.clear()
		call(f.hooks.OnAfterReset)
		f.notifyLocal(ctx, EventReset)
	})
}

// Cancel discards the edit like Reset but fires the cancel hooks.
func (f *Form[T, TID]) Cancel(ctx context.Context) {
	f.intercept(ctx, "cancel", f.hooks.OnBeforeCancel, func() {
		f.clear()
		call(f.hooks.OnAfterCancel)
		f.notifyLocal(ctx, EventCancel)
	})
}

func (f *Form[T, TID]) clear() {
	f.record = f.newRecord()
	f.identifier = f.newIdentifier()
	f.blobs = nil
}

// intercept runs op directly or hands it to before. An operation the hook did
// not run synchronously is logged as deferred.
func (f *Form[T, TID]) intercept(ctx context.Context, operation string, before func(proceed func()), op func()) {
	if before == nil {
		op()

		return
	}

	ran := false

	before(func() {
		ran = true

		op()
	})

	if !ran {
		f.logger.Warn("operation deferred by before hook", map[string]interface{}{
			"operation": operation,
			"state":     f.state.String(),
		})
		f.emit(ctx, Event{Type: EventDeferred, Operation: operation})
	}
}

func (f *Form[T, TID]) emit(ctx context.Context, event Event) {
	if len(f.observers) == 0 {
		return
	}

	event.State = f.state
	event.Time = time.Now().UTC()

	for _, observer := range f.observers {
		observer.Notify(ctx, event)
	}
}

func (f *Form[T, TID]) notifyLocal(ctx context.Context, eventType EventType) {
	f.emit(ctx, Event{Type: eventType, Succeeded: true})
}

// notify emits the outcome of a backend call.
func notify[T, TID, R any](ctx context.Context, f *Form[T, TID], eventType EventType, operation string, result crudkit.ResponseResult[crudkit.APIResponse[R]]) {
	f.emit(ctx, Event{
		Type:      eventType,
		Operation: operation,
		Succeeded: crudkit.Succeeded(result),
		Exception: result.HasException(),
		Message:   result.Response.Message,
		Errors:    result.Response.ErrorMessages,
		Err:       result.Err,
	})
}
