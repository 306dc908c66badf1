package replicate

import "fmt"

// OutcomeKind classifies the terminal result of a prediction run.
type OutcomeKind int

const (
	// Success carries the extracted text.
	Success OutcomeKind = iota
	// InputError means credentials or model version were missing; no network
	// call was attempted.
	InputError
	// CreationTransportError is a connection-level failure creating the
	// prediction (DNS, refused connection, request timeout).
	CreationTransportError
	// CreationRejected is a non-2xx response to the creation request.
	CreationRejected
	// CreationResponseMalformed means creation succeeded on the wire but the
	// body was unparseable or lacked a prediction id.
	CreationResponseMalformed
	// PredictionFailed covers everything that goes wrong after creation:
	// explicit remote failure, poll transport/status/parse errors, and the
	// overall budget elapsing while still pending.
	PredictionFailed
	// NoTextExtracted means the prediction succeeded but its output held no
	// usable text.
	NoTextExtracted
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case InputError:
		return "input_error"
	case CreationTransportError:
		return "creation_transport_error"
	case CreationRejected:
		return "creation_rejected"
	case CreationResponseMalformed:
		return "creation_response_malformed"
	case PredictionFailed:
		return "prediction_failed"
	case NoTextExtracted:
		return "no_text_extracted"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Severity buckets outcome kinds for rendering.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityError
)

// Outcome is the single result value of Client.Run. Expected failures are
// returned here as classified values, never as Go errors; callers must
// inspect Kind.
type Outcome struct {
	Kind OutcomeKind

	// Text is the extracted result, set only on Success.
	Text string

	// Reason describes the failure in human terms.
	Reason string

	// StatusCode is the HTTP status of a rejected creation request, zero
	// otherwise.
	StatusCode int

	// Body carries raw diagnostic material: the error body of a rejected
	// creation, the unparseable payload, or the raw output JSON when no text
	// could be extracted.
	Body string
}

// OK reports whether the run produced text.
func (o Outcome) OK() bool { return o.Kind == Success }

// Severity maps the outcome onto a rendering bucket: a succeeded prediction
// with no extractable text is a warning, every other failure is an error.
func (o Outcome) Severity() Severity {
	switch o.Kind {
	case Success:
		return SeverityOK
	case NoTextExtracted:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Message is the one-line human description of the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case Success:
		return o.Text
	case NoTextExtracted:
		return fmt.Sprintf("prediction succeeded but no text extracted, raw output: %s", o.Body)
	case CreationRejected:
		return fmt.Sprintf("creating prediction: HTTP %d: %s", o.StatusCode, o.Body)
	default:
		return o.Reason
	}
}

func successOutcome(text string) Outcome {
	return Outcome{Kind: Success, Text: text}
}

func failure(kind OutcomeKind, format string, args ...any) Outcome {
	return Outcome{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
