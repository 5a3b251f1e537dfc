// Package form drives the create, edit, copy and delete lifecycle of one
// record against a Service.
//
// A Form holds the record, its identifier, pending attachments and the last
// response. Save picks Add or Update from the state, and switches to the
// multipart AddWithBlobs/UpdateWithBlobs calls when attachments are queued.
// Outcomes are reported through Hooks: Completed fires for every response,
// then exactly one of Succeeded, Exception or Failed.
//
//	f, err := form.New(form.Config[User, UserKey]{
//		Service: service,
//		Hooks: form.Hooks[User]{
//			OnResponse: form.ResultHooks[User]{
//				Failed: func(r crudkit.ResponseResult[crudkit.APIResponse[User]]) {
//					fmt.Println(r.Response.ErrorMessages)
//				},
//			},
//		},
//	})
//
// Before hooks gate an operation: the operation runs only when the hook calls
// proceed, which it may do after returning, e.g. once a user confirmed.
package form
