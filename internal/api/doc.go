// Package api exposes the HTTP handlers for authentication, agent
// management and contact list distribution. Handlers decode and validate
// requests, call the service layer and map domain errors onto status codes
// through HandleAPIError.
package api
