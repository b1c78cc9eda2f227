package probe

import "time"

// Kind classifies a single attempt.
type Kind int

const (
	// KindResponse means an HTTP response arrived, whatever its status.
	KindResponse Kind = iota
	// KindTimeout means the request did not finish within the timeout.
	KindTimeout
	// KindConnectionFailure covers DNS failures, refused or reset
	// connections, unreachable networks, TLS handshake or certificate
	// errors and peers closing before any response.
	KindConnectionFailure
	// KindOtherError is any other transport failure.
	KindOtherError
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindTimeout:
		return "timeout"
	case KindConnectionFailure:
		return "connection_failure"
	case KindOtherError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one attempt. StatusCode and Elapsed are set only
// for KindResponse; Err is set for the failure kinds.
type Outcome struct {
	Kind       Kind
	StatusCode int
	Elapsed    time.Duration
	Err        error
}

// Response builds a KindResponse outcome.
func Response(status int, elapsed time.Duration) Outcome {
	return Outcome{Kind: KindResponse, StatusCode: status, Elapsed: elapsed}
}

// Failure builds a failure outcome, classifying err.
func Failure(err error) Outcome {
	return Outcome{Kind: Classify(err), Err: err}
}

// Failed reports whether a response carries an error status (>= 400).
func (o Outcome) Failed() bool {
	return o.Kind == KindResponse && o.StatusCode >= 400
}
