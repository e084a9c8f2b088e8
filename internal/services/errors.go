// Package services defines the business logic of the bridge: routing inbound
// error reports to chat threads and managing destination registrations. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into the webhook response envelope or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrThreadCreationFailed indicates that the chat gateway could not create
	// a discussion thread for a first-seen error. The engine never falls back
	// to a null thread; callers rely on the monitor's redelivery to retry the
	// whole report.
	ErrThreadCreationFailed = errors.New("thread creation failed")

	// ErrInvalidDestination is returned when a registration request carries an
	// empty chat link or project name.
	ErrInvalidDestination = errors.New("chat link and project name are required")
)
