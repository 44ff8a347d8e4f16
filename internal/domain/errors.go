package domain

import "errors"

var (
	// ErrEmptyInput: the message has no tokens after whitespace splitting.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnsupportedModel: the classifier exposes neither probabilities nor a decision score.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrPredictionTimeout: the oracle did not answer before its deadline.
	ErrPredictionTimeout = errors.New("prediction timeout")
	// ErrInvalidRequest: request parameters out of range.
	ErrInvalidRequest = errors.New("invalid request")
	ErrModelNotFound  = errors.New("model not found")
	ErrInvalidModel   = errors.New("invalid model artifact")
)
