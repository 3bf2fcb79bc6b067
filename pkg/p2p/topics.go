package p2p

// Gossip topic names.
const (
	TopicSignedCommitment = "signed_commitment"
	TopicRawTxList        = "raw_tx_list"
)

// ReqRespProtocol names a request/response protocol ID suffix.
type ReqRespProtocol string

const (
	ProtocolCommitments ReqRespProtocol = "commitments"
	ProtocolRawTxList   ReqRespProtocol = "raw_tx_list"
	ProtocolHead        ReqRespProtocol = "head"
)

// Outcome tags an RTT/metrics observation with how a request/response
// exchange concluded.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeNotFound Outcome = "not_found"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeError    Outcome = "error"
)
