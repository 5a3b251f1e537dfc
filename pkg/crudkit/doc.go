// Package crudkit is a client toolkit for CRUD backends that answer with a
// status/message/data envelope.
//
// It provides the response contracts (APIResponse, ResponseResult, Paged,
// Identifier, BlobData), validators, and HTTP helpers for JSON requests,
// multipart uploads and downloads. Every helper comes in two forms: one that
// returns (value, error) and a Result variant that folds the error into a
// ResponseResult. When the backend rejects a call with an envelope in the
// error body, the Result variants report it as a failed envelope instead of
// an exception.
//
// # Validation
//
// The SendValidated helpers run a Validator first and send nothing when it
// fails:
//
//	result := crudkit.SendValidatedJSON[User](ctx, transport, http.MethodPost,
//		"/api/users/Add", user, crudkit.NewStructValidator())
//	if !crudkit.Succeeded(result) {
//		fmt.Println(result.Response.ErrorMessages)
//	}
//
// # Services
//
// HTTPService bundles the conventional endpoints of one resource:
//
//	service, err := crudkit.NewHTTPService[User, UserKey](transport, crudkit.DefaultEndpoints("users"))
//
// A Transport is created with the crudclient package.
package crudkit
