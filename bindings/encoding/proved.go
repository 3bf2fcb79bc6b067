package encoding

import (
	"github.com/ethereum/go-ethereum/common"
)

// maxBondType is the highest bondType enum value the wire format admits.
const maxBondType = 4

// EndBlockMiniHeader is the compact header summary carried by a proof.
type EndBlockMiniHeader struct {
	Number    uint64
	Hash      common.Hash
	StateRoot common.Hash
}

// BondInstruction records a single bond credit/debit triggered by a proof.
type BondInstruction struct {
	ProposalID uint64
	BondType   uint8
	Payer      common.Address
	Receiver   common.Address
}

// ProvedEventPayload is the decoded form of the "Proved" L1 event log.
type ProvedEventPayload struct {
	ProposalID             uint64
	ProposalHash           common.Hash
	ParentTransitionHash   common.Hash
	EndBlockMiniHeader     EndBlockMiniHeader
	DesignatedProver       common.Address
	ActualProver           common.Address
	Span                   uint8
	TransitionHash         common.Hash
	EndBlockMiniHeaderHash common.Hash
	BondInstructions       []BondInstruction
}

// DecodeProved decodes the fixed 247+47m byte "Proved" event payload.
func DecodeProved(data []byte) (*ProvedEventPayload, error) {
	r := newByteReader(data)

	proposalID, err := r.uintBE("proposalId", 6)
	if err != nil {
		return nil, err
	}
	proposalHash, err := r.hash("proposalHash")
	if err != nil {
		return nil, err
	}
	parentTransitionHash, err := r.hash("parentTransitionHash")
	if err != nil {
		return nil, err
	}
	endBlockNumber, err := r.uintBE("endBlockMiniHeader.number", 6)
	if err != nil {
		return nil, err
	}
	endBlockHash, err := r.hash("endBlockMiniHeader.hash")
	if err != nil {
		return nil, err
	}
	endBlockStateRoot, err := r.hash("endBlockMiniHeader.stateRoot")
	if err != nil {
		return nil, err
	}
	designatedProver, err := r.address("designatedProver")
	if err != nil {
		return nil, err
	}
	actualProver, err := r.address("actualProver")
	if err != nil {
		return nil, err
	}
	span, err := r.byteVal("span")
	if err != nil {
		return nil, err
	}
	transitionHash, err := r.hash("transitionHash")
	if err != nil {
		return nil, err
	}
	endBlockMiniHeaderHash, err := r.hash("endBlockMiniHeaderHash")
	if err != nil {
		return nil, err
	}
	bondInstructionsLen, err := r.uintBE("bondInstructionsLen", 2)
	if err != nil {
		return nil, err
	}

	instructions := make([]BondInstruction, 0, bondInstructionsLen)
	for i := uint64(0); i < bondInstructionsLen; i++ {
		bondProposalID, err := r.uintBE("bondInstructions[].proposalId", 6)
		if err != nil {
			return nil, err
		}
		bondType, err := r.byteVal("bondInstructions[].bondType")
		if err != nil {
			return nil, err
		}
		if bondType > maxBondType {
			return nil, newInvalidData("bondInstructions[].bondType", "bondType > 4")
		}
		payer, err := r.address("bondInstructions[].payer")
		if err != nil {
			return nil, err
		}
		receiver, err := r.address("bondInstructions[].receiver")
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, BondInstruction{
			ProposalID: bondProposalID,
			BondType:   bondType,
			Payer:      payer,
			Receiver:   receiver,
		})
	}

	return &ProvedEventPayload{
		ProposalID:           proposalID,
		ProposalHash:         proposalHash,
		ParentTransitionHash: parentTransitionHash,
		EndBlockMiniHeader: EndBlockMiniHeader{
			Number:    endBlockNumber,
			Hash:      endBlockHash,
			StateRoot: endBlockStateRoot,
		},
		DesignatedProver:       designatedProver,
		ActualProver:           actualProver,
		Span:                   span,
		TransitionHash:         transitionHash,
		EndBlockMiniHeaderHash: endBlockMiniHeaderHash,
		BondInstructions:       instructions,
	}, nil
}

// EncodeProved is the mirror of DecodeProved.
func EncodeProved(p *ProvedEventPayload) ([]byte, error) {
	w := &byteWriter{}
	w.putUintBE(p.ProposalID, 6)
	w.putHash(p.ProposalHash)
	w.putHash(p.ParentTransitionHash)
	w.putUintBE(p.EndBlockMiniHeader.Number, 6)
	w.putHash(p.EndBlockMiniHeader.Hash)
	w.putHash(p.EndBlockMiniHeader.StateRoot)
	w.putAddress(p.DesignatedProver)
	w.putAddress(p.ActualProver)
	w.putByte(p.Span)
	w.putHash(p.TransitionHash)
	w.putHash(p.EndBlockMiniHeaderHash)
	w.putUintBE(uint64(len(p.BondInstructions)), 2)
	for _, bi := range p.BondInstructions {
		if bi.BondType > maxBondType {
			return nil, newInvalidData("bondInstructions[].bondType", "bondType > 4")
		}
		w.putUintBE(bi.ProposalID, 6)
		w.putByte(bi.BondType)
		w.putAddress(bi.Payer)
		w.putAddress(bi.Receiver)
	}
	return w.buf, nil
}
