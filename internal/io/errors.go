package io

import "fmt"

// TruncatedInputError reports a header or payload shorter than its layout requires
type TruncatedInputError struct {
	Section string // "header" or "payload"
	Got     int    // bytes available
	Want    int    // bytes required
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("truncated %s: got %d bytes, want %d", e.Section, e.Got, e.Want)
}

// HeaderError reports a header field outside its valid domain
type HeaderError struct {
	Index int
	Value int32
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header field %d is negative: %d", e.Index, e.Value)
}
