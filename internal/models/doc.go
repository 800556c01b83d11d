// Package models defines the request and result types exchanged with the
// bill splitter.
//
// # Types
//
//   - SplitRequest: a total and the amount proposed for each participant
//   - SplitResult: whether the proposal balances, and by how much it is off
//   - EvenSplitRequest / EvenSplitResponse: an even division of a total
//
// Participants are identified by name only. Names are caller-supplied and are
// not required to be unique.
//
// # Money on the wire
//
// Amounts are JSON numbers. Inbound numbers are decoded from their text into
// exact decimals, never through float64. Outbound amounts are money.Cents and
// render as plain numbers with at most two fractional digits.
//
// # Errors
//
// Decoding and validation failures are reported with the sentinel errors in
// this package (ErrMalformedInput, ErrNegativeValue, ...). Callers classify
// them with errors.Is and present them with PublicMessage.
package models
