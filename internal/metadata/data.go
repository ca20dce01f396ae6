package metadata

import "time"

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Retry counts

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (worker ID, crawl ID)
*/

// MetadataSink receives observational events from every pipeline stage.
// Recording is observational only and MUST NOT influence scheduling,
// retries, or crawl termination.
type MetadataSink interface {
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		sizeBytes uint64,
		retryCount int,
	)
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		errorString string,
		attrs []Attribute,
	)
	RecordArtifact(
		kind ArtifactKind,
		path string,
		attrs []Attribute,
	)
}

/*
CrawlFinalizer
  - Receives a terminal, derived summary of a completed crawl
  - Contains only aggregate counts and durations
  - Is computed by the manager after crawl termination
  - Is recorded exactly once
  - Must not influence scheduling, retries, or crawl termination
*/
type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		completedCycles int,
		totalErrors int,
		duration time.Duration,
	)
}

type ArtifactKind string

const (
	ArtifactMarkdown ArtifactKind = "markdown"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	CauseUnknown ErrorCause = iota
	// Network transport or remote availability: TCP timeouts, DNS
	// failures, connection resets.
	CauseNetworkFailure
	// Explicit access denial: HTTP 403 / 401, rate-limit enforcement.
	CausePolicyDisallow
	// Content was fetched but could not be processed meaningfully:
	// non-HTML bodies, unparseable candidates.
	CauseContentInvalid
	// Failure while persisting crawl artifacts.
	CauseStorageFailure
	// The shared frontier store was unreachable or misbehaved.
	CauseFrontierFailure
	// A retry loop exhausted its attempts.
	CauseRetryFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseFrontierFailure:
		return "frontier_failure"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrWorker     AttributeKey = "worker"
	AttrMessage    AttributeKey = "message"
)
