package jwttoken

// Kind distinguishes why a token was rejected. The access gate collapses all
// kinds into one client-facing outcome; the kind is for logs and metrics.
type Kind string

const (
	Malformed        Kind = "malformed"
	InvalidSignature Kind = "invalid_signature"
	Expired          Kind = "expired"
)

type VerificationError struct {
	Kind Kind
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return "token " + string(e.Kind) + ": " + e.Err.Error()
	}
	return "token " + string(e.Kind)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone.
func (e *VerificationError) Is(target error) bool {
	t, ok := target.(*VerificationError)
	return ok && t.Kind == e.Kind
}
