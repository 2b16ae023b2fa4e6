package solbc

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestErrorAnalyzer_AnalyzeRPCError(t *testing.T) {
	ea := NewErrorAnalyzer(zaptest.NewLogger(t))

	tests := []struct {
		name       string
		err        error
		wantRPC    bool
		wantReason string
		wantCode   string
	}{
		{
			name:       "blockhash expired",
			err:        &jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed: Blockhash not found"},
			wantRPC:    true,
			wantReason: ReasonBlockhashNotFound,
		},
		{
			name: "token program insufficient funds",
			err: &jsonrpc.RPCError{
				Code:    -32002,
				Message: "Transaction simulation failed: Error processing Instruction 4: custom program error: 0x1",
				Data: map[string]interface{}{
					"logs": []interface{}{
						"Program TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA invoke [1]",
						"Program TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA failed: custom program error: 0x1",
					},
				},
			},
			wantRPC:    true,
			wantReason: ReasonInsufficientFunds,
			wantCode:   "0x1",
		},
		{
			name: "other simulation failure",
			err: &jsonrpc.RPCError{
				Code:    -32002,
				Message: "Transaction simulation failed: Error processing Instruction 2: custom program error: 0x26",
				Data: map[string]interface{}{
					"logs": []interface{}{
						"Program metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s failed: custom program error: 0x26",
					},
				},
			},
			wantRPC:    true,
			wantReason: ReasonSimulationFailed,
			wantCode:   "0x26",
		},
		{
			name:       "transport failure",
			err:        errors.New("dial tcp: connection refused"),
			wantRPC:    false,
			wantReason: ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ea.AnalyzeRPCError(tt.err)
			require.NotNil(t, a)
			assert.Equal(t, tt.wantRPC, a.RPC)
			assert.Equal(t, tt.wantRPC, IsRPCError(tt.err))
			assert.Equal(t, tt.wantReason, a.Reason)
			assert.Same(t, tt.err, a.Raw)
			if tt.wantCode != "" {
				require.NotNil(t, a.ProgramError)
				assert.Equal(t, tt.wantCode, a.ProgramError.Code)
			}
			assert.NotEmpty(t, ea.FormatErrorAnalysis(a))
		})
	}
}

func TestErrorAnalyzer_AnalyzeExecutionError(t *testing.T) {
	ea := NewErrorAnalyzer(zaptest.NewLogger(t))

	assert.Nil(t, ea.AnalyzeExecutionError(nil))

	a := ea.AnalyzeExecutionError(map[string]interface{}{
		"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 1}},
	})
	require.NotNil(t, a)
	assert.Equal(t, ReasonInsufficientFunds, a.Reason)
	assert.Error(t, a.Raw)
}
