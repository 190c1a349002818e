package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates an AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNoBoundarySignal indicates boundary detection had no adjacent-pair
	// distances to threshold against (too few embedded sentences)
	ErrNoBoundarySignal = errors.New("no boundary signal")

	// ErrIngestInProgress indicates an ingestion is already running for the project
	ErrIngestInProgress = errors.New("ingest already in progress")

	// ErrProjectNotReady indicates the project has not finished ingestion
	ErrProjectNotReady = errors.New("project not ready")

	// ErrEmptyDocument indicates the acquired document contained no text
	ErrEmptyDocument = errors.New("empty document")
)
