package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagMissingParameter marks requests lacking required webhook headers
	ErrTagMissingParameter = goerr.NewTag("missing_parameter")

	// ErrTagUnauthorized marks requests whose signature could not be verified
	ErrTagUnauthorized = goerr.NewTag("unauthorized")

	// ErrTagDigestMissing marks a signed request that reached authorization
	// without a computed body digest. It indicates broken middleware wiring,
	// not a bad signature.
	ErrTagDigestMissing = goerr.NewTag("digest_missing")

	// ErrTagUnsupportedEvent marks event types the trigger does not handle
	ErrTagUnsupportedEvent = goerr.NewTag("unsupported_event")

	// ErrTagInvalidPayload marks payloads missing a required field
	ErrTagInvalidPayload = goerr.NewTag("invalid_payload")

	// ErrTagInvalidConfig marks trigger configuration errors
	ErrTagInvalidConfig = goerr.NewTag("invalid_config")
)
