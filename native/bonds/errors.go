package bonds

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable numeric identifier of a ledger failure. Codes are
// part of the wire contract and must never be renumbered.
type ErrorCode uint32

const (
	CodeDeserialization ErrorCode = iota
	CodeSerialization
	CodeInvalidProgramOwner
	CodeInvalidPda
	CodeExpectedEmptyAccount
	CodeExpectedNonEmptyAccount
	CodeExpectedSignerAccount
	CodeExpectedWritableAccount
	CodeAccountMismatch
	CodeInvalidAccountKey
	CodeNumericalOverflow
	CodeInsufficientTokens
	CodeInvalidBondIndex
	CodeInvalidTokenAccounts
	CodeNoRewardsToClaim
	CodeInsufficientRewards
	CodeBondNotActive
	CodeMaxBondsReached
	CodeBondOperationsPaused
	CodeBondIsActive
)

var codeMessages = [...]string{
	CodeDeserialization:         "error deserializing an account",
	CodeSerialization:           "error serializing an account",
	CodeInvalidProgramOwner:     "invalid program owner",
	CodeInvalidPda:              "invalid derived address",
	CodeExpectedEmptyAccount:    "expected empty account",
	CodeExpectedNonEmptyAccount: "expected non empty account",
	CodeExpectedSignerAccount:   "expected signer account",
	CodeExpectedWritableAccount: "expected writable account",
	CodeAccountMismatch:         "account mismatch",
	CodeInvalidAccountKey:       "invalid account key",
	CodeNumericalOverflow:       "numerical overflow",
	CodeInsufficientTokens:      "insufficient tokens",
	CodeInvalidBondIndex:        "invalid bond index",
	CodeInvalidTokenAccounts:    "invalid token accounts",
	CodeNoRewardsToClaim:        "no rewards to claim",
	CodeInsufficientRewards:     "insufficient rewards",
	CodeBondNotActive:           "bond not active",
	CodeMaxBondsReached:         "max bonds reached",
	CodeBondOperationsPaused:    "bond operations paused",
	CodeBondIsActive:            "bond is active",
}

func (c ErrorCode) String() string {
	if int(c) < len(codeMessages) {
		return codeMessages[c]
	}
	return fmt.Sprintf("unknown error code %d", uint32(c))
}

// Error is returned for every rejected ledger operation. Account names the
// record role that failed validation when one applies.
type Error struct {
	Code    ErrorCode
	Account string
	Detail  string
}

func (e *Error) Error() string {
	msg := "bonds: " + e.Code.String()
	if e.Account != "" {
		msg += " (" + e.Account + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any *Error carrying the same code, so the package sentinels can
// be used with errors.Is regardless of account or detail.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func newError(code ErrorCode, account string) *Error {
	return &Error{Code: code, Account: account}
}

func errorf(code ErrorCode, account, format string, args ...interface{}) *Error {
	return &Error{Code: code, Account: account, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ledger error code carried by err.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

var (
	ErrDeserialization         = &Error{Code: CodeDeserialization}
	ErrSerialization           = &Error{Code: CodeSerialization}
	ErrInvalidProgramOwner     = &Error{Code: CodeInvalidProgramOwner}
	ErrInvalidPda              = &Error{Code: CodeInvalidPda}
	ErrExpectedEmptyAccount    = &Error{Code: CodeExpectedEmptyAccount}
	ErrExpectedNonEmptyAccount = &Error{Code: CodeExpectedNonEmptyAccount}
	ErrExpectedSignerAccount   = &Error{Code: CodeExpectedSignerAccount}
	ErrExpectedWritableAccount = &Error{Code: CodeExpectedWritableAccount}
	ErrAccountMismatch         = &Error{Code: CodeAccountMismatch}
	ErrInvalidAccountKey       = &Error{Code: CodeInvalidAccountKey}
	ErrNumericalOverflow       = &Error{Code: CodeNumericalOverflow}
	ErrInsufficientTokens      = &Error{Code: CodeInsufficientTokens}
	ErrInvalidBondIndex        = &Error{Code: CodeInvalidBondIndex}
	ErrInvalidTokenAccounts    = &Error{Code: CodeInvalidTokenAccounts}
	ErrNoRewardsToClaim        = &Error{Code: CodeNoRewardsToClaim}
	ErrInsufficientRewards     = &Error{Code: CodeInsufficientRewards}
	ErrBondNotActive           = &Error{Code: CodeBondNotActive}
	ErrMaxBondsReached         = &Error{Code: CodeMaxBondsReached}
	ErrBondOperationsPaused    = &Error{Code: CodeBondOperationsPaused}
	ErrBondIsActive            = &Error{Code: CodeBondIsActive}
)

// Boundary errors raised while turning wire bytes into an operation. They are
// not part of the ledger code table.
var (
	ErrInvalidInstruction = errors.New("bonds: invalid instruction data")
	ErrNotEnoughAccounts  = errors.New("bonds: not enough account keys")
	ErrUnknownInstruction = errors.New("bonds: unknown instruction")
	errNilState           = errors.New("bonds engine: state not configured")
	errNilTokens          = errors.New("bonds engine: token ledger not configured")
)
