package goalpool

import (
	"testing"

	"github.com/branched-services/go-goalpool/internal/chaintest"
)

// goalPoolABI is the goal pool interface plus a few functions used to
// exercise type checks.
const goalPoolABI = `[
	{"type":"function","name":"charityPoolTotal","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balancesOf","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[
		{"name":"available","type":"uint256"},
		{"name":"staked","type":"uint256"},
		{"name":"earned","type":"uint256"},
		{"name":"burned","type":"uint256"}
	]},
	{"type":"function","name":"depositCredits","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"completeGoal","stateMutability":"nonpayable","inputs":[{"name":"goalId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"missGoal","stateMutability":"nonpayable","inputs":[{"name":"goalId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"setLevel","stateMutability":"nonpayable","inputs":[{"name":"level","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"setOwner","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"}],"outputs":[]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"setLabel","stateMutability":"nonpayable","inputs":[{"name":"label","type":"string"}],"outputs":[]},
	{"type":"event","name":"Deposited","inputs":[{"name":"user","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
]`

const (
	testContract = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	testUser     = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"

	// Well-known development key; never holds real funds.
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSigner     = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
)

func testDescriptor(t *testing.T) *ContractDescriptor {
	t.Helper()
	parsed, err := ParseABI(goalPoolABI)
	if err != nil {
		t.Fatalf("Failed to parse ABI: %v", err)
	}
	return NewContractDescriptor(MustAddress(testContract), parsed)
}

func testCredential(t *testing.T) *Credential {
	t.Helper()
	cred, err := ParsePrivateKey(testPrivateKey)
	if err != nil {
		t.Fatalf("Failed to parse key: %v", err)
	}
	return cred
}

func respond(t *testing.T, backend *chaintest.Backend, desc *ContractDescriptor, fn string, outputs ...any) {
	t.Helper()
	method, err := desc.Method(fn)
	if err != nil {
		t.Fatalf("Unknown method %s: %v", fn, err)
	}
	if err := backend.Respond(method, outputs...); err != nil {
		t.Fatalf("Failed to register response: %v", err)
	}
}
