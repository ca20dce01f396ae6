package metadata

import (
	"io"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Recorder is the default MetadataSink and CrawlFinalizer: it encodes
// every event as one logfmt record on a single writer. Safe for use
// from many workers at once.
//
// Silence discards subsequent records; the manager flips it while
// draining the pool after SIGINT so the shutdown message is readable.
type Recorder struct {
	mu        sync.Mutex
	component string
	enc       *logfmt.Encoder
	silenced  atomic.Bool
}

func NewRecorder(component string) Recorder {
	return Recorder{
		component: component,
		enc:       logfmt.NewEncoder(os.Stderr),
	}
}

// NewRecorderWithWriter is used by tests to capture output.
func NewRecorderWithWriter(component string, w io.Writer) Recorder {
	return Recorder{
		component: component,
		enc:       logfmt.NewEncoder(w),
	}
}

func (r *Recorder) Silence() {
	r.silenced.Store(true)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	sizeBytes uint64,
	retryCount int,
) {
	r.emit(
		"event", "fetch",
		"url", fetchUrl,
		"status", strconv.Itoa(httpStatus),
		"duration_ms", strconv.FormatInt(duration.Milliseconds(), 10),
		"size_bytes", strconv.FormatUint(sizeBytes, 10),
		"retries", strconv.Itoa(retryCount),
	)
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	kv := []string{
		"event", "error",
		"ts", observedAt.UTC().Format(time.RFC3339),
		"package", packageName,
		"action", action,
		"cause", cause.String(),
		"error", errorString,
	}
	for _, a := range attrs {
		kv = append(kv, string(a.Key), a.Value)
	}
	r.emit(kv...)
}

func (r *Recorder) RecordArtifact(
	kind ArtifactKind,
	path string,
	attrs []Attribute,
) {
	kv := []string{
		"event", "artifact",
		"kind", string(kind),
		"path", path,
	}
	for _, a := range attrs {
		kv = append(kv, string(a.Key), a.Value)
	}
	r.emit(kv...)
}

func (r *Recorder) RecordFinalCrawlStats(
	completedCycles int,
	totalErrors int,
	duration time.Duration,
) {
	r.emit(
		"event", "crawl_done",
		"cycles", strconv.Itoa(completedCycles),
		"errors", strconv.Itoa(totalErrors),
		"duration_ms", strconv.FormatInt(duration.Milliseconds(), 10),
	)
}

func (r *Recorder) emit(keyvals ...string) {
	if r.silenced.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enc.EncodeKeyval("component", r.component)
	for i := 0; i+1 < len(keyvals); i += 2 {
		r.enc.EncodeKeyval(keyvals[i], keyvals[i+1])
	}
	r.enc.EndRecord()
}

// NoopSink is a MetadataSink and CrawlFinalizer that discards every
// record. Used by tests that don't assert on observability.
type NoopSink struct{}

func (n *NoopSink) RecordFetch(string, int, time.Duration, uint64, int)                       {}
func (n *NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute)    {}
func (n *NoopSink) RecordArtifact(ArtifactKind, string, []Attribute)                          {}
func (n *NoopSink) RecordFinalCrawlStats(int, int, time.Duration)                             {}
