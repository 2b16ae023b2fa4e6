package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// Rejection reasons reported for a failed broadcast or execution.
const (
	ReasonBlockhashNotFound = "blockhash_not_found"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonAlreadyProcessed  = "already_processed"
	ReasonSimulationFailed  = "simulation_failed"
	ReasonUnknown           = "unknown"
)

// ProgramError is a program failure extracted from simulation logs.
type ProgramError struct {
	ProgramID string `json:"program_id,omitempty"`
	Code      string `json:"code"`
}

// Analysis is the structured view of a ledger error. Raw always holds the
// original error unmodified.
type Analysis struct {
	RPC          bool          `json:"rpc"`
	Code         int           `json:"code,omitempty"`
	Message      string        `json:"message"`
	Reason       string        `json:"reason"`
	Logs         []string      `json:"logs,omitempty"`
	ProgramError *ProgramError `json:"program_error,omitempty"`
	Raw          error         `json:"-"`
}

// ErrorAnalyzer classifies RPC and execution errors.
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// IsRPCError reports whether the node answered with a JSON-RPC error, as
// opposed to a transport failure where the node may never have seen the request.
func IsRPCError(err error) bool {
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr)
}

// AnalyzeRPCError classifies an error returned by a broadcast.
func (ea *ErrorAnalyzer) AnalyzeRPCError(err error) *Analysis {
	if err == nil {
		return nil
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return &Analysis{
			Message: err.Error(),
			Reason:  classifyMessage(err.Error(), nil),
			Raw:     err,
		}
	}

	a := &Analysis{
		RPC:     true,
		Code:    rpcErr.Code,
		Message: rpcErr.Message,
		Raw:     err,
	}

	if dataMap, ok := rpcErr.Data.(map[string]interface{}); ok {
		if logs, ok := dataMap["logs"].([]interface{}); ok {
			for _, entry := range logs {
				if s, ok := entry.(string); ok {
					a.Logs = append(a.Logs, s)
				}
			}
		}
	}

	a.ProgramError = parseProgramError(a.Logs)
	a.Reason = classifyMessage(rpcErr.Message, a.Logs)

	if a.ProgramError != nil {
		ea.logger.Warn("Program error detected",
			zap.String("program_id", a.ProgramError.ProgramID),
			zap.String("code", a.ProgramError.Code),
			zap.String("reason", a.Reason))
	}
	return a
}

// AnalyzeExecutionError classifies the err field of a signature status.
func (ea *ErrorAnalyzer) AnalyzeExecutionError(statusErr interface{}) *Analysis {
	if statusErr == nil {
		return nil
	}
	msg := fmt.Sprintf("%v", statusErr)
	if raw, err := json.Marshal(statusErr); err == nil {
		msg = string(raw)
	}
	return &Analysis{
		Message: msg,
		Reason:  classifyMessage(msg, nil),
		Raw:     errors.New(msg),
	}
}

func classifyMessage(msg string, logs []string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "blockhash not found"):
		return ReasonBlockhashNotFound
	case strings.Contains(lower, "insufficient funds") || strings.Contains(lower, "insufficientfunds"):
		return ReasonInsufficientFunds
	case strings.Contains(lower, "already been processed") || strings.Contains(lower, "alreadyprocessed"):
		return ReasonAlreadyProcessed
	}

	for _, l := range logs {
		ll := strings.ToLower(l)
		if strings.Contains(ll, "insufficient lamports") || strings.HasSuffix(ll, "custom program error: 0x1") {
			return ReasonInsufficientFunds
		}
	}
	if hasErrorCode(lower, "custom program error: 0x1") || strings.Contains(msg, `"Custom":1}`) {
		return ReasonInsufficientFunds
	}
	if strings.Contains(lower, "simulation failed") {
		return ReasonSimulationFailed
	}
	return ReasonUnknown
}

// hasErrorCode matches code only when it is not the prefix of a longer hex code.
func hasErrorCode(s, code string) bool {
	for {
		idx := strings.Index(s, code)
		if idx < 0 {
			return false
		}
		rest := s[idx+len(code):]
		if rest == "" || !strings.ContainsRune("0123456789abcdef", rune(rest[0])) {
			return true
		}
		s = rest
	}
}

// parseProgramError extracts the last "Program X failed: ..." line.
// Example: "Program TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA failed: custom program error: 0x4"
func parseProgramError(logs []string) *ProgramError {
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if !strings.HasPrefix(l, "Program ") || !strings.Contains(l, " failed: ") {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(l, "Program "), " failed: ", 2)
		pe := &ProgramError{ProgramID: parts[0], Code: parts[1]}
		if idx := strings.Index(parts[1], "custom program error: "); idx >= 0 {
			pe.Code = strings.TrimSpace(parts[1][idx+len("custom program error: "):])
		}
		return pe
	}
	return nil
}

// FormatErrorAnalysis formats the error analysis for logging or display
func (ea *ErrorAnalyzer) FormatErrorAnalysis(a *Analysis) string {
	jsonBytes, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error formatting analysis: %v", err)
	}
	return string(jsonBytes)
}
