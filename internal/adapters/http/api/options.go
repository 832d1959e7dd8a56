package api

// Defaults applied by NewServer.
const (
	DefaultUploadMaxBytes int64 = 10 << 20
	DefaultCORSOrigin           = "http://localhost:3000"
)

type options struct {
	uploadMaxBytes int64
	corsOrigin     string
	ready          ReadinessChecker
}

// Option configures a Server.
type Option func(*options)

// WithUploadMaxBytes caps the size of an upload request body.
func WithUploadMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.uploadMaxBytes = n
		}
	}
}

// WithCORSOrigin sets the single origin allowed to call the API from a browser.
func WithCORSOrigin(origin string) Option {
	return func(o *options) {
		if origin != "" {
			o.corsOrigin = origin
		}
	}
}

// WithReadiness makes /api/health consult rc.
func WithReadiness(rc ReadinessChecker) Option {
	return func(o *options) { o.ready = rc }
}
