package models

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound = status.Errorf(codes.NotFound, "not found")

	ErrCartNotFound     = status.Error(codes.NotFound, "cart not found")
	ErrInvalidIndex     = status.Error(codes.OutOfRange, "item index out of range")
	ErrInvalidQuantity  = status.Error(codes.InvalidArgument, "quantity must be at least 1")
	ErrInvalidSelection = status.Error(codes.OutOfRange, "product selection out of range")
	ErrEmptyCart        = status.Error(codes.FailedPrecondition, "cart is empty")
	ErrUnknownMode      = status.Error(codes.InvalidArgument, "unknown optimization mode")

	ErrAdapterTimeout = status.Error(codes.DeadlineExceeded, "source timed out")
	ErrAdapterBlocked = status.Error(codes.Unavailable, "source blocked the request")
	ErrAdapterParse   = status.Error(codes.DataLoss, "source response could not be parsed")

	ErrInterpreterUnavailable = status.Error(codes.Unavailable, "interpreter unavailable")
)
