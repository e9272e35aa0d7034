package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              传输层返回码
// ============================================================================

// TransportCode 传输层返回码
//
// 与 DDS ReturnCode_t 的取值集合一致。
type TransportCode int

const (
	CodeOK TransportCode = iota
	CodeError
	CodeUnsupported
	CodeBadParameter
	CodePreconditionNotMet
	CodeOutOfResources
	CodeNotEnabled
	CodeImmutablePolicy
	CodeInconsistentPolicy
	CodeAlreadyDeleted
	CodeTimeout
	CodeNoData
	CodeIllegalOperation
)

var transportCodeNames = map[TransportCode]string{
	CodeOK:                 "OK",
	CodeError:              "ERROR",
	CodeUnsupported:        "UNSUPPORTED",
	CodeBadParameter:       "BAD_PARAMETER",
	CodePreconditionNotMet: "PRECONDITION_NOT_MET",
	CodeOutOfResources:     "OUT_OF_RESOURCES",
	CodeNotEnabled:         "NOT_ENABLED",
	CodeImmutablePolicy:    "IMMUTABLE_POLICY",
	CodeInconsistentPolicy: "INCONSISTENT_POLICY",
	CodeAlreadyDeleted:     "ALREADY_DELETED",
	CodeTimeout:            "TIMEOUT",
	CodeNoData:             "NO_DATA",
	CodeIllegalOperation:   "ILLEGAL_OPERATION",
}

// AllTransportCodes 返回全部已定义的返回码
func AllTransportCodes() []TransportCode {
	out := make([]TransportCode, 0, len(transportCodeNames))
	for c := CodeOK; c <= CodeIllegalOperation; c++ {
		out = append(out, c)
	}
	return out
}

// String 返回返回码名称
func (c TransportCode) String() string {
	if name, ok := transportCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// TransportError 携带返回码的传输层错误
type TransportError struct {
	Code TransportCode
	Op   string
	Err  error
}

// NewTransportError 创建传输层错误
func NewTransportError(op string, code TransportCode, err error) *TransportError {
	return &TransportError{Code: code, Op: op, Err: err}
}

// Error 实现 error 接口
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("transport %s: %s", e.Op, e.Code)
}

// Unwrap 返回底层错误
func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransportCodeOf 提取错误链中的返回码
func TransportCodeOf(err error) (TransportCode, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Code, true
	}
	return CodeOK, false
}
