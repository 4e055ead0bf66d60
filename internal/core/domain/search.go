package domain

import "fmt"

// SearchResult is a single normalized web search result. Fields are
// omitted from the JSON encoding when a provider did not supply them,
// which is the case for knowledge panel entries that carry no link.
type SearchResult struct {
	Title   string `json:"title,omitempty"`
	Link    string `json:"link,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchEnvelope is the normalized output of a web search. Exactly one
// of the three fields is set: Results for a successful search, Message
// for the zero-results case, Error for any failure.
type SearchEnvelope struct {
	Results []SearchResult `json:"results,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// SearchErrorKind classifies a search failure so callers can branch on
// it programmatically instead of matching message text.
type SearchErrorKind string

const (
	// SearchErrConfig means a required credential was absent; no network
	// call was attempted.
	SearchErrConfig SearchErrorKind = "config"

	// SearchErrTransport covers DNS, connection, TLS and timeout failures.
	SearchErrTransport SearchErrorKind = "transport"

	// SearchErrProvider means the provider answered with a non-success status.
	SearchErrProvider SearchErrorKind = "provider"

	// SearchErrDecode means the response body could not be parsed or lacked
	// the expected result fields.
	SearchErrDecode SearchErrorKind = "decode"
)

// SearchError is a classified search failure. Its message is what ends
// up in the error envelope verbatim.
type SearchError struct {
	Kind SearchErrorKind
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *SearchError) Error() string {
	return e.Msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError builds a SearchError with a formatted message.
func NewSearchError(kind SearchErrorKind, format string, args ...interface{}) *SearchError {
	return &SearchError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapSearchError classifies an underlying error while keeping it
// reachable through errors.Unwrap.
func WrapSearchError(kind SearchErrorKind, err error, format string, args ...interface{}) *SearchError {
	return &SearchError{Kind: kind, Msg: fmt.Sprintf(format, args...) + ": " + err.Error(), Err: err}
}

// MissingCredential is the config error for an absent credential. The
// message format is part of the adapter contract.
func MissingCredential(name string) *SearchError {
	return &SearchError{Kind: SearchErrConfig, Msg: "Missing " + name}
}
