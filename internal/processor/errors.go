package processor

import "fmt"

// DecodeError reports a record whose data is not valid base64.
type DecodeError struct {
	Index    int
	RecordID string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record %d (%s): decode: %v", e.Index, e.RecordID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransformError reports a failure of the transformation step, including
// partition key extraction.
type TransformError struct {
	Index    int
	RecordID string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("record %d (%s): transform: %v", e.Index, e.RecordID, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
