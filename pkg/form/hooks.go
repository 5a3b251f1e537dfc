package form

import (
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

// ResultHooks are the callbacks fired for one kind of backend response.
// Unset callbacks are skipped.
type ResultHooks[R any] struct {
	// Completed fires for every response.
	Completed func(result crudkit.ResponseResult[crudkit.APIResponse[R]])
	// Succeeded fires when there was no error and the envelope succeeded.
	Succeeded func(result crudkit.ResponseResult[crudkit.APIResponse[R]])
	// Exception fires when the call raised an error.
	Exception func(result crudkit.ResponseResult[crudkit.APIResponse[R]])
	// Failed fires when the backend or validation rejected the call.
	Failed func(result crudkit.ResponseResult[crudkit.APIResponse[R]])
}

// Hooks are the lifecycle callbacks of a Form.
//
// Before hooks receive the operation as proceed and must call it for the
// operation to run. They may call it later, after the hook has returned.
type Hooks[T any] struct {
	// OnLoad fires for GetOne responses, Completed after the outcome hook.
	OnLoad ResultHooks[T]
	// OnResponse fires for Add, Update and Delete responses, Completed first.
	OnResponse ResultHooks[T]
	// OnResponseAddWithBlobs fires for multipart create responses, Completed first.
	OnResponseAddWithBlobs ResultHooks[crudkit.RecordWithBlobs[T]]
	// OnResponseUpdateWithBlobs fires for multipart update responses, Completed first.
	OnResponseUpdateWithBlobs ResultHooks[crudkit.RecordUpdateWithBlobs[T]]

	OnBeforeReset  func(proceed func())
	OnAfterReset   func()
	OnBeforeCancel func(proceed func())
	OnAfterCancel  func()
	OnBeforeSave   func(proceed func())
	OnAfterSave    func()
	OnBeforeDelete func(proceed func())
	OnAfterDelete  func(record T)
}

type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeException
	outcomeFailed
)

func classify[R any](result crudkit.ResponseResult[crudkit.APIResponse[R]]) outcome {
	switch {
	case crudkit.Succeeded(result):
		return outcomeSucceeded
	case result.HasException():
		return outcomeException
	default:
		return outcomeFailed
	}
}

// dispatch calls the hook for outcome o.
func (h ResultHooks[R]) dispatch(o outcome, result crudkit.ResponseResult[crudkit.APIResponse[R]]) {
	var hook func(crudkit.ResponseResult[crudkit.APIResponse[R]])

	switch o {
	case outcomeSucceeded:
		hook = h.Succeeded
	case outcomeException:
		hook = h.Exception
	case outcomeFailed:
		hook = h.Failed
	}

	if hook != nil {
		hook(result)
	}
}

func (h ResultHooks[R]) complete(result crudkit.ResponseResult[crudkit.APIResponse[R]]) {
	if h.Completed != nil {
		h.Completed(result)
	}
}

func call(hook func()) {
	if hook != nil {
		hook()
	}
}
