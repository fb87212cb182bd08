package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Code is the type representing a namespace error code.
// Name carries the stable identifier surfaced to callers (USRxxx/SYSxxx),
// kept unchanged across revisions so integrators can match on it.
type Code[MT any] struct {
	Code       uint16
	Name       string
	HttpStatus int
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

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	HttpStatus() int
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
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

func (e *ErrorImpl[MT]) HttpStatus() int {
	return e.code.HttpStatus
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

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type AmountMetadata struct {
	Amount uint64 `json:"amount"`
}

type TokenMetadata struct {
	Token string `json:"token"`
}

type QuotaMetadata struct {
	Token     string `json:"token"`
	Requested uint64 `json:"requested"`
	Available uint64 `json:"available"`
}

type FundsMetadata struct {
	Token     string `json:"token"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}

type RecipientMetadata struct {
	Recipient string `json:"recipient"`
}

type RedeemMetadata struct {
	Recipient string `json:"recipient"`
	Index     uint64 `json:"index"`
}

type DelayMetadata struct {
	Delay uint64 `json:"delay"`
}

type RoleMetadata struct {
	Required string `json:"required"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", http.StatusInternalServerError}

var INVALID_INPUT = Code[AmountMetadata]{1, "USR001", http.StatusBadRequest}

var POLICY_VIOLATION = Code[RecipientMetadata]{9, "USR009", http.StatusForbidden}

var INSUFFICIENT_QUOTA = Code[QuotaMetadata]{10, "USR010", http.StatusTooManyRequests}

var INSUFFICIENT_FUNDS = Code[FundsMetadata]{11, "USR011", http.StatusConflict}

var INVALID_DELAY = Code[DelayMetadata]{12, "USR012", http.StatusBadRequest}

var NOT_YET_ELIGIBLE = Code[RedeemMetadata]{13, "USR013", http.StatusConflict}

var UNAUTHORIZED = Code[RoleMetadata]{2, "SYS002", http.StatusForbidden}

var TOKEN_NOT_ALLOWED = Code[TokenMetadata]{3, "SYS003", http.StatusForbidden}

var REDEEM_NOT_FOUND = Code[RedeemMetadata]{4, "USR004", http.StatusNotFound}
