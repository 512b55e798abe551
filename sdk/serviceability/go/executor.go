package serviceability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TxRPCClient is the subset of the RPC surface Execute needs beyond read
// access: blockhash lookup, simulate, send, and confirm. Kept separate from
// RPCClient so read-only callers (e.g. the CLI's list/get commands) don't
// need a signer.
type TxRPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetEpochInfo(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetEpochInfoResult, error)
}

// Executor builds, signs, simulates, submits, and confirms instructions
// against the serviceability program, decoding simulation failures into the
// domain ErrorKind taxonomy (§4.5, §7).
type Executor struct {
	rpc       TxRPCClient
	programID solana.PublicKey
	payer     solana.PrivateKey
}

func NewExecutor(rpcClient TxRPCClient, programID solana.PublicKey, payer solana.PrivateKey) *Executor {
	return &Executor{rpc: rpcClient, programID: programID, payer: payer}
}

// AccountMeta mirrors solana.AccountMeta; re-exported so callers building
// instruction account lists don't need a direct solana-go import for this
// one type.
type AccountMeta = solana.AccountMeta

// Payer returns the public key of the signer this Executor submits
// transactions with, for callers that need to include it in an
// instruction's account list (e.g. as the authority on a create/update).
func (e *Executor) Payer() solana.PublicKey {
	return e.payer.PublicKey()
}

// GetEpoch returns the current ledger epoch, used for AccessPass validity
// checks (§4.5).
func (e *Executor) GetEpoch(ctx context.Context) (uint64, error) {
	info, err := e.rpc.GetEpochInfo(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get epoch info: %w", err)
	}
	return info.Epoch, nil
}

// ExecuteTransaction builds a single-instruction transaction, signs it with
// the loaded payer key, simulates, submits, and polls for confirmation. On
// simulation failure it decodes the first Custom(n) program error into an
// ErrorKind (§4.5).
func (e *Executor) ExecuteTransaction(ctx context.Context, op Opcode, args any, accounts []AccountMeta) (solana.Signature, error) {
	data, err := BuildInstructionData(op, args)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build instruction data: %w", err)
	}

	ix := solana.NewInstruction(e.programID, accounts, data)

	bh, err := e.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, bh.Value.Blockhash, solana.TransactionPayer(e.payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(e.payer.PublicKey()) {
			return &e.payer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	if sim, err := e.rpc.SimulateTransaction(ctx, tx); err != nil {
		return solana.Signature{}, fmt.Errorf("simulate transaction: %w", err)
	} else if sim.Value.Err != nil {
		return solana.Signature{}, decodeSimulationError(sim.Value.Err)
	}

	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{SkipPreflight: true})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	if err := e.confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (e *Executor) confirm(ctx context.Context, sig solana.Signature) error {
	const (
		pollInterval = 500 * time.Millisecond
		maxAttempts  = 40
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		statuses, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("get signature status: %w", err)
		}
		if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			st := statuses.Value[0]
			if st.Err != nil {
				return decodeSimulationError(st.Err)
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed || st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return errors.New("serviceability: transaction confirmation timed out")
}

// decodedError wraps a transaction failure's decoded program error.
type decodedError struct {
	Kind ErrorKind
	raw  any
}

func (d *decodedError) Error() string {
	return fmt.Sprintf("program error %s: %v", d.Kind, d.raw)
}

func (d *decodedError) Unwrap() error { return d.Kind }

// decodeSimulationError extracts the first Custom(n) code from a
// transaction error value and maps it to an ErrorKind, falling back to a
// generic error when the shape isn't the expected InstructionError/Custom
// pair (e.g. a pure transport/blockhash-expiry failure).
func decodeSimulationError(txErr any) error {
	m, ok := txErr.(map[string]any)
	if !ok {
		return fmt.Errorf("serviceability: transaction failed: %v", txErr)
	}
	instrErr, ok := m["InstructionError"].([]any)
	if !ok || len(instrErr) != 2 {
		return fmt.Errorf("serviceability: transaction failed: %v", txErr)
	}
	inner, ok := instrErr[1].(map[string]any)
	if !ok {
		return fmt.Errorf("serviceability: transaction failed: %v", txErr)
	}
	code, ok := inner["Custom"].(float64)
	if !ok {
		return fmt.Errorf("serviceability: transaction failed: %v", txErr)
	}
	return &decodedError{Kind: FromCode(uint32(code)), raw: txErr}
}
