// Code generated by hand from the Surge inbox ABI, in the shape abigen would
// produce. Only the read-only surface the embedded driver needs is bound;
// regenerate with abigen against the full ABI if write methods are needed.

package bindings

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// InboxMetaData contains the ABI fragment this binding is generated from.
var InboxMetaData = &bind.MetaData{
	ABI: "[" +
		"{\"type\":\"function\",\"name\":\"getCoreState\",\"inputs\":[]," +
		"\"outputs\":[{\"name\":\"\",\"type\":\"tuple\",\"internalType\":\"struct IInbox.CoreState\"," +
		"\"components\":[{\"name\":\"nextProposalId\",\"type\":\"uint48\",\"internalType\":\"uint48\"}]}]," +
		"\"stateMutability\":\"view\"}," +
		"{\"type\":\"function\",\"name\":\"lastBlockIdByBatchId\",\"inputs\":[{\"name\":\"proposalId\",\"type\":\"uint256\"," +
		"\"internalType\":\"uint256\"}],\"outputs\":[{\"name\":\"\",\"type\":\"uint256\",\"internalType\":\"uint256\"}]," +
		"\"stateMutability\":\"view\"}," +
		"{\"type\":\"function\",\"name\":\"headL1Origin\",\"inputs\":[]," +
		"\"outputs\":[{\"name\":\"blockId\",\"type\":\"uint256\",\"internalType\":\"uint256\"}," +
		"{\"name\":\"exists\",\"type\":\"bool\",\"internalType\":\"bool\"}],\"stateMutability\":\"view\"}" +
		"]",
}

// InboxABI is the input ABI used to generate the binding from.
// Deprecated: Use InboxMetaData.ABI instead.
var InboxABI = InboxMetaData.ABI

// InboxCoreState mirrors the Solidity IInbox.CoreState tuple's nextProposalId field.
type InboxCoreState struct {
	NextProposalId *big.Int
}

// Inbox is an auto generated Go binding around the deployed Surge inbox contract.
type Inbox struct {
	InboxCaller // Read-only binding to the contract
}

// InboxCaller is an auto generated read-only Go binding around an Ethereum contract.
type InboxCaller struct {
	contract *bind.BoundContract
}

// NewInbox creates a new instance of Inbox, bound to a specific deployed contract.
func NewInbox(address common.Address, caller bind.ContractCaller) (*Inbox, error) {
	contract, err := bindInbox(address, caller)
	if err != nil {
		return nil, err
	}
	return &Inbox{InboxCaller: InboxCaller{contract: contract}}, nil
}

func bindInbox(address common.Address, caller bind.ContractCaller) (*bind.BoundContract, error) {
	parsed, err := InboxMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, *parsed, caller, nil, nil), nil
}

// GetCoreState is a free data retrieval call binding the contract method.
//
// Solidity: function getCoreState() view returns((uint48) )
func (_Inbox *InboxCaller) GetCoreState(opts *bind.CallOpts) (InboxCoreState, error) {
	var out []interface{}
	err := _Inbox.contract.Call(opts, &out, "getCoreState")
	if err != nil {
		return InboxCoreState{}, err
	}
	return *abi.ConvertType(out[0], new(InboxCoreState)).(*InboxCoreState), nil
}

// LastBlockIdByBatchId is a free data retrieval call binding the contract method.
//
// Solidity: function lastBlockIdByBatchId(uint256 proposalId) view returns(uint256)
func (_Inbox *InboxCaller) LastBlockIdByBatchId(opts *bind.CallOpts, proposalId *big.Int) (*big.Int, error) {
	var out []interface{}
	err := _Inbox.contract.Call(opts, &out, "lastBlockIdByBatchId", proposalId)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// HeadL1Origin is a free data retrieval call binding the contract method.
//
// Solidity: function headL1Origin() view returns(uint256 blockId, bool exists)
func (_Inbox *InboxCaller) HeadL1Origin(opts *bind.CallOpts) (struct {
	BlockId *big.Int
	Exists  bool
}, error) {
	var out []interface{}
	err := _Inbox.contract.Call(opts, &out, "headL1Origin")

	outstruct := new(struct {
		BlockId *big.Int
		Exists  bool
	})
	if err != nil {
		return *outstruct, err
	}

	outstruct.BlockId = abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	outstruct.Exists = *abi.ConvertType(out[1], new(bool)).(*bool)

	return *outstruct, nil
}
