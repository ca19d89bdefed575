// Package apperror holds the error taxonomy shared by the ledger, the services and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidRequest        Code = "INVALID_REQUEST"
	CodeProductNotFound       Code = "PRODUCT_NOT_FOUND"
	CodeSizeNotAvailable      Code = "SIZE_NOT_AVAILABLE"
	CodeInsufficientStock     Code = "INSUFFICIENT_STOCK"
	CodeInvalidOperation      Code = "INVALID_OPERATION"
	CodeDuplicateSKU          Code = "DUPLICATE_SKU"
	CodeInvoiceNumberConflict Code = "INVOICE_NUMBER_CONFLICT"
	CodeStoreUnavailable      Code = "STORE_UNAVAILABLE"
	CodeUnexpected            Code = "UNEXPECTED_FAILURE"
)

// Error is a classified failure. Details carries the structured context
// (product, size, quantities) a client needs to correct and retry.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the code to its HTTP status.
func (e *Error) Status() int {
	switch e.Code {
	case CodeInvalidRequest, CodeSizeNotAvailable, CodeInsufficientStock, CodeInvalidOperation, CodeDuplicateSKU:
		return http.StatusBadRequest
	case CodeProductNotFound:
		return http.StatusNotFound
	case CodeInvoiceNumberConflict:
		return http.StatusConflict
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code of err, or CodeUnexpected when err is not classified.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnexpected
}

// From returns err as *Error, wrapping unclassified errors as UNEXPECTED_FAILURE.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}

func InvalidRequest(message string, details map[string]any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: message, Details: details}
}

func InvalidOperation(message string, details map[string]any) *Error {
	return &Error{Code: CodeInvalidOperation, Message: message, Details: details}
}

// ProductNotFound names every lookup key that was tried.
func ProductNotFound(id, sku, name string) *Error {
	return &Error{
		Code:    CodeProductNotFound,
		Message: fmt.Sprintf("product not found (id: %s, sku: %s, name: %s)", orNA(id), orNA(sku), orNA(name)),
		Details: map[string]any{
			"searchedBy": map[string]string{"id": id, "sku": sku, "name": name},
		},
	}
}

func SizeNotAvailable(productID, productName, size string, available []string) *Error {
	if available == nil {
		available = []string{}
	}
	return &Error{
		Code:    CodeSizeNotAvailable,
		Message: fmt.Sprintf("size %s is not available for %s", size, productName),
		Details: map[string]any{
			"productId":      productID,
			"productName":    productName,
			"size":           size,
			"availableSizes": available,
		},
	}
}

func InsufficientStock(productID, productName, size string, available, requested int) *Error {
	return &Error{
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %s, size %s: available %d, requested %d", productName, size, available, requested),
		Details: map[string]any{
			"productId":   productID,
			"productName": productName,
			"size":        size,
			"available":   available,
			"requested":   requested,
		},
	}
}

func DuplicateSKU(sku string, err error) *Error {
	return &Error{
		Code:    CodeDuplicateSKU,
		Message: fmt.Sprintf("sku %s already exists", sku),
		Details: map[string]any{"sku": sku},
		Err:     err,
	}
}

func InvoiceNumberConflict(number string, err error) *Error {
	return &Error{
		Code:    CodeInvoiceNumberConflict,
		Message: fmt.Sprintf("invoice number %s is already taken", number),
		Details: map[string]any{"invoiceNumber": number},
		Err:     err,
	}
}

func StoreUnavailable(err error) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: "store is unavailable", Err: err}
}

func Unexpected(err error) *Error {
	return &Error{Code: CodeUnexpected, Message: "unexpected failure", Err: err}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
