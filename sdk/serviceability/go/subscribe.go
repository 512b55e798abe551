package serviceability

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
)

// AccountUpdate is one post-commit account snapshot delivered by Subscribe
// (§4.5's "stream<(key, AccountData)>").
type AccountUpdate struct {
	Pubkey      solana.PublicKey
	AccountType AccountType
	Data        []byte
}

// Subscribe returns a single-threaded cooperative stream of account
// snapshots for every write touching the program (§4.5, §5). The wire
// transport (RPC/websocket) is out of scope for this repository per
// spec.md §1; this is a poll-based reference implementation suitable for
// tests and for environments without a websocket endpoint — it re-fetches
// GetProgramAccounts on each tick and diffs against the previous snapshot
// by (pubkey, raw bytes).
func (c *Client) Subscribe(ctx context.Context, interval time.Duration) (<-chan AccountUpdate, <-chan error) {
	updates := make(chan AccountUpdate)
	errs := make(chan error, 1)

	go func() {
		defer close(updates)
		seen := map[solana.PublicKey][]byte{}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			out, err := c.rpc.GetProgramAccounts(ctx, c.programID)
			if err != nil {
				select {
				case errs <- err:
				default:
				}
				continue
			}

			for _, element := range out {
				data := element.Account.Data.GetBinary()
				if len(data) == 0 {
					continue
				}
				prev, ok := seen[element.Pubkey]
				if ok && bytesEqual(prev, data) {
					continue
				}
				seen[element.Pubkey] = data

				select {
				case updates <- AccountUpdate{Pubkey: element.Pubkey, AccountType: AccountType(data[0]), Data: data}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, errs
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
