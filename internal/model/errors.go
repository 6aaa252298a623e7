package model

import "errors"

// ErrDocumentNotFound is returned by Storage.GetDocument for an unknown id.
var ErrDocumentNotFound = errors.New("model: document not found")

// ErrUnsupportedCalculatorInput is returned by a calculator when its inputs
// fall outside what it can compute. Calculators never fabricate an answer
// for unsupported inputs (spec §4.5 invariant).
var ErrUnsupportedCalculatorInput = errors.New("model: unsupported calculator input")
