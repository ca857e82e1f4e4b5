package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongSecret         = errors.New("wrong account secret")

	ErrValidationNoRecordsProvided = errors.New("no records provided")
	ErrValidationNoZoneProvided    = errors.New("no record zone provided")
	ErrValidationLengthMismatch    = errors.New("declared batch length does not match payload")
)
