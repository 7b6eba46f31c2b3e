// Package service contains the application use cases: uploading and
// distributing contact lists, listing and updating tasks, managing agents and
// authenticating users.
//
// Services receive their stores through constructor injection, check the
// acting user's capabilities, and translate store errors into the sentinels in
// errors.go that the API layer maps to status codes.
package service
