// Code generated by hand from the PreconfWhitelist ABI, in the shape
// abigen would produce. Only the read-only surface the lookahead resolver
// needs is bound.

package bindings

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// PreconfWhitelistMetaData contains the ABI fragment this binding is generated from.
var PreconfWhitelistMetaData = &bind.MetaData{
	ABI: "[{\"type\":\"function\",\"name\":\"getOperatorForCurrentEpoch\",\"inputs\":[]," +
		"\"outputs\":[{\"name\":\"\",\"type\":\"address\",\"internalType\":\"address\"}]," +
		"\"stateMutability\":\"view\"}]",
}

// PreconfWhitelistABI is the input ABI used to generate the binding from.
// Deprecated: Use PreconfWhitelistMetaData.ABI instead.
var PreconfWhitelistABI = PreconfWhitelistMetaData.ABI

// PreconfWhitelist is an auto generated Go binding around the deployed
// whitelist-fallback operator contract.
type PreconfWhitelist struct {
	PreconfWhitelistCaller
}

// PreconfWhitelistCaller is an auto generated read-only Go binding around an Ethereum contract.
type PreconfWhitelistCaller struct {
	contract *bind.BoundContract
}

// NewPreconfWhitelist creates a new instance of PreconfWhitelist, bound to a specific deployed contract.
func NewPreconfWhitelist(address common.Address, caller bind.ContractCaller) (*PreconfWhitelist, error) {
	parsed, err := PreconfWhitelistMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, *parsed, caller, nil, nil)
	return &PreconfWhitelist{PreconfWhitelistCaller: PreconfWhitelistCaller{contract: contract}}, nil
}

// GetOperatorForCurrentEpoch is a free data retrieval call binding the contract method.
//
// Solidity: function getOperatorForCurrentEpoch() view returns(address)
func (_PreconfWhitelist *PreconfWhitelistCaller) GetOperatorForCurrentEpoch(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _PreconfWhitelist.contract.Call(opts, &out, "getOperatorForCurrentEpoch")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
