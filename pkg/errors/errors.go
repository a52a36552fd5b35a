package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

// Is reports whether err carries this code.
func (c Code[MT]) Is(err error) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code() == c.Code
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
	TypedMetadata() MT
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) TypedMetadata() MT {
	return e.metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

// GRPCStatus lets status.Convert map the error to its grpc code.
func (e *ErrorImpl[MT]) GRPCStatus() *status.Status {
	return status.New(e.code.GrpcCode, e.Error())
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

// Unwrap exposes the cause, ledger errors are passed through unchanged.
func (e *ErrorImpl[MT]) Unwrap() error {
	return e.cause
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type IntentMetadata struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
}

type NEVMAddressMetadata struct {
	Address string `json:"address"`
}

type InsufficientFundsMetadata struct {
	// Guid is 0 when the shortfall is on the native coin.
	Guid     uint64 `json:"guid"`
	Required int64  `json:"required"`
	Selected int64  `json:"selected"`
	Deficit  int64  `json:"deficit"`
}

type LedgerMetadata struct {
	Method string `json:"method"`
}

type OutputMismatchMetadata struct {
	Txid        string `json:"txid"`
	Destination string `json:"destination"`
	Guid        uint64 `json:"guid"`
	Amount      int64  `json:"amount"`
}

type TxNotFoundMetadata struct {
	Txid string `json:"txid"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}
var INVALID_INTENT = Code[IntentMetadata]{1, "INVALID_INTENT", grpccodes.InvalidArgument}

var INVALID_NEVM_ADDRESS = Code[NEVMAddressMetadata]{
	2,
	"INVALID_NEVM_ADDRESS",
	grpccodes.InvalidArgument,
}

var INSUFFICIENT_FUNDS = Code[InsufficientFundsMetadata]{
	3,
	"INSUFFICIENT_FUNDS",
	grpccodes.FailedPrecondition,
}
var LEDGER_ERROR = Code[LedgerMetadata]{4, "LEDGER_ERROR", grpccodes.Unavailable}

var OUTPUT_MISMATCH = Code[OutputMismatchMetadata]{
	5,
	"OUTPUT_MISMATCH",
	grpccodes.DataLoss,
}
var TX_NOT_FOUND = Code[TxNotFoundMetadata]{6, "TX_NOT_FOUND", grpccodes.NotFound}
