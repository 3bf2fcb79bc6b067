package p2p

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/reputation"
)

// MaxCommitmentsPerResponse caps how many commitments a single commitments{}
// response may return, regardless of the requested max_count.
const MaxCommitmentsPerResponse = 512

// OutboundRequestID identifies one in-flight outbound request. Generated
// from a random UUID rather than a counter so ids stay unique across
// process restarts and can be logged without a surrounding sequence.
type OutboundRequestID string

type correlation struct {
	peerID   string
	protocol ReqRespProtocol
	started  time.Time
}

// OutboundTracker pairs each outbound request with its start time so a
// later response (or timeout) can be scored for RTT and reputation. It
// keeps a FIFO of request ids per protocol alongside the correlation map so
// callers can sweep the oldest still-pending request when enforcing
// request timeouts, without scanning the whole map.
type OutboundTracker struct {
	mu      sync.Mutex
	fifo    map[ReqRespProtocol][]OutboundRequestID
	pending map[OutboundRequestID]correlation

	rtt   *prometheus.HistogramVec
	store *reputation.Store
}

func NewOutboundTracker(store *reputation.Store) *OutboundTracker {
	return &OutboundTracker{
		fifo:    make(map[ReqRespProtocol][]OutboundRequestID),
		pending: make(map[OutboundRequestID]correlation),
		rtt: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "p2p_reqresp_rtt_seconds",
			Help:    "Round-trip time for outbound request/response exchanges.",
			Buckets: prometheus.DefBuckets,
		}, []string{"protocol", "outcome"}),
		store: store,
	}
}

func (t *OutboundTracker) Describe(ch chan<- *prometheus.Desc) { t.rtt.Describe(ch) }
func (t *OutboundTracker) Collect(ch chan<- prometheus.Metric)  { t.rtt.Collect(ch) }

// Begin registers a new outbound request and returns its id.
func (t *OutboundTracker) Begin(peerID string, protocol ReqRespProtocol) OutboundRequestID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := OutboundRequestID(uuid.NewString())
	t.pending[id] = correlation{peerID: peerID, protocol: protocol, started: time.Now()}
	t.fifo[protocol] = append(t.fifo[protocol], id)
	return id
}

// Complete resolves an outbound request, recording its RTT and applying
// the corresponding reputation action. Unknown ids are ignored (the
// request may have already timed out and been swept).
func (t *OutboundTracker) Complete(id OutboundRequestID, outcome Outcome) {
	t.mu.Lock()
	c, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()
	if !ok {
		return
	}

	rtt := time.Since(c.started)
	t.rtt.WithLabelValues(string(c.protocol), string(outcome)).Observe(rtt.Seconds())

	switch outcome {
	case OutcomeSuccess, OutcomeNotFound:
		t.store.Apply(c.peerID, reputation.ReqRespSuccess)
	case OutcomeTimeout:
		t.store.Apply(c.peerID, reputation.Timeout)
	case OutcomeError:
		t.store.Apply(c.peerID, reputation.ReqRespError)
	}
}

// OldestPending returns the oldest still-unresolved request id for a
// protocol, for timeout-sweep callers, and whether one exists.
func (t *OutboundTracker) OldestPending(protocol ReqRespProtocol) (OutboundRequestID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.fifo[protocol]
	for len(ids) > 0 {
		id := ids[0]
		if _, ok := t.pending[id]; ok {
			t.fifo[protocol] = ids
			return id, true
		}
		ids = ids[1:]
	}
	t.fifo[protocol] = ids
	return "", false
}
