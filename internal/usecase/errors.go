package usecase

import crerr "github.com/cockroachdb/errors"

var (
	// ErrMisconfigured means the server lacks configuration it needs to serve the request.
	ErrMisconfigured = crerr.New("server misconfigured")
	// ErrDependencyUnavailable means an upstream provider could not supply usable data.
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrUpstreamNotFound is returned by stats sources when a dataset does not exist yet.
	ErrUpstreamNotFound = crerr.New("upstream dataset not found")
)
