package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so the caller can decide whether to retry and how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindEmptyInput
	KindTransient
	KindClient
	KindDataFormat
	KindNumeric
	KindNotify
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindEmptyInput:
		return "empty_input"
	case KindTransient:
		return "transient"
	case KindClient:
		return "client"
	case KindDataFormat:
		return "data_format"
	case KindNumeric:
		return "numeric"
	case KindNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// SnippetLimit bounds the raw body excerpt carried by data format errors.
const SnippetLimit = 256

// Error is a classified failure with the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Query   string
	Snippet string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")

	switch e.Kind {
	case KindClient:
		fmt.Fprintf(&b, "request for %q rejected with status %d", e.Query, e.Status)
	case KindTransient:
		b.WriteString("transient failure")
		if e.Status != 0 {
			fmt.Fprintf(&b, " (status %d)", e.Status)
		}
	case KindDataFormat:
		b.WriteString("unexpected data format")
	default:
		b.WriteString(e.Kind.String())
		b.WriteString(" error")
	}

	if e.Snippet != "" {
		fmt.Fprintf(&b, " [body: %s]", e.Snippet)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Config(op string, err error) *Error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

func EmptyInput(op string) *Error {
	return &Error{Kind: KindEmptyInput, Op: op, Err: errors.New("place must not be blank")}
}

func Transient(op string, status int, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Status: status, Err: err}
}

func Client(op string, status int, query string) *Error {
	return &Error{Kind: KindClient, Op: op, Status: status, Query: query}
}

// DataFormat records a shape violation together with a bounded excerpt of the raw body.
func DataFormat(op string, body []byte, err error) *Error {
	return &Error{Kind: KindDataFormat, Op: op, Snippet: Snippet(body), Err: err}
}

func Numeric(op string, err error) *Error {
	return &Error{Kind: KindNumeric, Op: op, Err: err}
}

func Notify(op string, err error) *Error {
	return &Error{Kind: KindNotify, Op: op, Err: err}
}

// FromStatus classifies an HTTP status: nil for 2xx, a client error for 4xx and a
// transient error for anything else.
func FromStatus(op string, status int, query string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 400 && status < 500:
		return Client(op, status, query)
	default:
		return Transient(op, status, fmt.Errorf("unexpected status code: %d", status))
	}
}

// Snippet returns at most SnippetLimit bytes of body, trimmed of surrounding whitespace.
func Snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= SnippetLimit {
		return s
	}
	return strings.ToValidUTF8(s[:SnippetLimit], "") + "..."
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}

// Chain lists the message of every layer in the wrap chain, outermost first.
// A layer whose message only repeats its cause's is skipped.
func Chain(err error) []string {
	var out []string
	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)
		if next != nil {
			if inner := next.Error(); strings.HasSuffix(msg, ": "+inner) {
				msg = strings.TrimSuffix(msg, ": "+inner)
			}
		}
		out = append(out, msg)
		err = next
	}
	return out
}
