package p2p

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/ratelimit"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p/reputation"
)

// CommitmentStore is the subset of the commitment store's read surface the
// inbound request handler needs.
type CommitmentStore interface {
	CommitmentsRange(start uint64, maxCount uint32) []core.SignedCommitment
	RawTxListByHash(hash common.Hash) ([]byte, bool)
	Head() core.PreconfHead
}

// CommitmentsRequest is the `commitments{start, max_count}` request body.
type CommitmentsRequest struct {
	Start    uint64
	MaxCount uint32
}

// RawTxListRequest is the `raw_tx_list{hash}` request body.
type RawTxListRequest struct {
	Hash common.Hash
}

// RawTxListResponse carries a gossip-cached tx list, or Found=false when
// absent (an explicit not-found, not an error). Hash echoes the request's
// hash so callers can confirm the response actually matches what they
// asked for.
type RawTxListResponse struct {
	Hash   common.Hash
	TxList []byte
	Found  bool
}

// InboundHandler implements the four-step inbound request flow: ban check,
// rate limit, protocol dispatch, reply-and-score.
type InboundHandler struct {
	store       CommitmentStore
	reputation  *reputation.Store
	limiter     *ratelimit.Limiter
	dropped     *prometheus.CounterVec
	served      *prometheus.CounterVec
}

func NewInboundHandler(store CommitmentStore, rep *reputation.Store, limiter *ratelimit.Limiter) *InboundHandler {
	return &InboundHandler{
		store:      store,
		reputation: rep,
		limiter:    limiter,
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "p2p_inbound_dropped_total",
			Help: "Inbound requests dropped before handling, tagged by reason.",
		}, []string{"reason"}),
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "p2p_inbound_served_total",
			Help: "Inbound requests served, tagged by protocol and outcome.",
		}, []string{"protocol", "outcome"}),
	}
}

func (h *InboundHandler) Describe(ch chan<- *prometheus.Desc) {
	h.dropped.Describe(ch)
	h.served.Describe(ch)
}

func (h *InboundHandler) Collect(ch chan<- prometheus.Metric) {
	h.dropped.Collect(ch)
	h.served.Collect(ch)
}

// HandleCommitments serves a commitments{start, max_count} request.
func (h *InboundHandler) HandleCommitments(peerID string, req CommitmentsRequest) ([]core.SignedCommitment, bool) {
	if !h.admit(peerID, ProtocolCommitments) {
		return nil, false
	}
	maxCount := req.MaxCount
	if maxCount > MaxCommitmentsPerResponse {
		maxCount = MaxCommitmentsPerResponse
	}
	result := h.store.CommitmentsRange(req.Start, maxCount)
	h.reputation.Apply(peerID, reputation.ReqRespSuccess)
	h.served.WithLabelValues(string(ProtocolCommitments), string(OutcomeSuccess)).Inc()
	return result, true
}

// HandleRawTxList serves a raw_tx_list{hash} request. An absent entry is an
// explicit not-found reply, not a reputation penalty.
func (h *InboundHandler) HandleRawTxList(peerID string, req RawTxListRequest) (RawTxListResponse, bool) {
	if !h.admit(peerID, ProtocolRawTxList) {
		return RawTxListResponse{}, false
	}

	txList, found := h.store.RawTxListByHash(req.Hash)
	if !found {
		h.served.WithLabelValues(string(ProtocolRawTxList), string(OutcomeNotFound)).Inc()
		return RawTxListResponse{Hash: req.Hash, Found: false}, true
	}

	h.reputation.Apply(peerID, reputation.ReqRespSuccess)
	h.served.WithLabelValues(string(ProtocolRawTxList), string(OutcomeSuccess)).Inc()
	return RawTxListResponse{Hash: req.Hash, TxList: txList, Found: true}, true
}

// HandleHead serves a head request with the locally maintained preconf head.
func (h *InboundHandler) HandleHead(peerID string) (core.PreconfHead, bool) {
	if !h.admit(peerID, ProtocolHead) {
		return core.PreconfHead{}, false
	}
	head := h.store.Head()
	h.reputation.Apply(peerID, reputation.ReqRespSuccess)
	h.served.WithLabelValues(string(ProtocolHead), string(OutcomeSuccess)).Inc()
	return head, true
}

// admit runs the ban check and rate limit, recording drop metrics and the
// rate-limit timeout penalty on failure.
func (h *InboundHandler) admit(peerID string, protocol ReqRespProtocol) bool {
	if h.reputation.IsBanned(peerID) {
		h.dropped.WithLabelValues("banned").Inc()
		return false
	}

	var kind ratelimit.Kind
	switch protocol {
	case ProtocolCommitments:
		kind = ratelimit.Commitments
	case ProtocolRawTxList:
		kind = ratelimit.RawTxList
	default:
		kind = ratelimit.Head
	}

	if !h.limiter.Allow(peerID, kind) {
		h.dropped.WithLabelValues("rate_limited").Inc()
		h.reputation.Apply(peerID, reputation.Timeout)
		return false
	}
	return true
}
