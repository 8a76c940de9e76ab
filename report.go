package goalpool

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceLabels names the components returned by the balances function, in order.
var BalanceLabels = []string{"available", "staked", "earned", "burned"}

// Reporter prints command progress to out and failures to errOut. Every
// value goes through Display.
type Reporter struct {
	out      io.Writer
	errOut   io.Writer
	explorer string
}

// NewReporter creates a reporter. explorerBaseURL is the block explorer root,
// e.g. https://sepolia.arbiscan.io; an empty value disables links.
func NewReporter(out, errOut io.Writer, explorerBaseURL string) *Reporter {
	return &Reporter{
		out:      out,
		errOut:   errOut,
		explorer: strings.TrimRight(explorerBaseURL, "/"),
	}
}

// ExplorerURL returns the explorer link for a transaction, or "" when no
// explorer is configured.
func (r *Reporter) ExplorerURL(txID common.Hash) string {
	if r.explorer == "" {
		return ""
	}
	return r.explorer + "/tx/" + txID.Hex()
}

// Header prints the contract and endpoint in use.
func (r *Reporter) Header(contract Address, rpcURL string) {
	fmt.Fprintln(r.out, "Contract:", Display(contract))
	fmt.Fprintln(r.out, "RPC:", rpcURL)
	fmt.Fprintln(r.out, "---")
}

// Tip prints an informational line.
func (r *Reporter) Tip(msg string) {
	fmt.Fprintln(r.out, "Tip:", msg)
}

// Read prints a read result as "fn = v1, v2".
func (r *Reporter) Read(res *ReadResult) {
	fmt.Fprintf(r.out, "%s = %s\n", res.Function, joinValues(res.Values, ", "))
}

// Balances prints the per-user balance components, labelled when the result
// has exactly len(BalanceLabels) values.
func (r *Reporter) Balances(user Address, res *ReadResult) {
	if len(res.Values) != len(BalanceLabels) {
		fmt.Fprintf(r.out, "%s %s %s\n", res.Function, Display(user), joinValues(res.Values, " "))
		return
	}
	parts := make([]string, len(res.Values))
	for i, v := range res.Values {
		parts[i] = BalanceLabels[i] + "=" + Display(v)
	}
	fmt.Fprintf(r.out, "%s %s %s\n", res.Function, Display(user), strings.Join(parts, " "))
}

// Calling prints the request about to be submitted.
func (r *Reporter) Calling(req *CallRequest) {
	fmt.Fprintf(r.out, "Calling %s...\n", req.String())
}

// Submitted prints the transaction hash and explorer link of a pending write.
func (r *Reporter) Submitted(res *WriteResult) {
	fmt.Fprintln(r.out, "Tx hash:", res.TxID.Hex())
	if link := r.ExplorerURL(res.TxID); link != "" {
		fmt.Fprintln(r.out, "View on explorer:", link)
	}
}

// Confirmed prints the block a write was confirmed in.
func (r *Reporter) Confirmed(res *WriteResult) {
	if res.ConfirmedBlock == nil {
		fmt.Fprintln(r.out, "Confirmed")
		return
	}
	fmt.Fprintln(r.out, "Confirmed in block", Display(*res.ConfirmedBlock))
}

// ReportError is the single formatter for failures. Errors raised after a
// submission also print the transaction hash and explorer link, since the
// write may have taken effect.
func (r *Reporter) ReportError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(r.errOut, "Error:", strings.TrimPrefix(err.Error(), "goalpool: "))
	if txID, ok := TxIDOf(err); ok {
		fmt.Fprintln(r.errOut, "Tx hash:", txID.Hex())
		if link := r.ExplorerURL(txID); link != "" {
			fmt.Fprintln(r.errOut, "View on explorer:", link)
		}
	}
}

func joinValues(values []Value, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Display(v)
	}
	return strings.Join(parts, sep)
}
