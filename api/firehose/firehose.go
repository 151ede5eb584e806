// Package firehose holds the record shapes exchanged with Kinesis Data
// Firehose when it invokes a transformation Lambda.
package firehose

import (
	"github.com/aws/aws-lambda-go/events"
)

// Result is the per-record status reported back to Firehose.
type Result string

const (
	ResultOk               Result = events.KinesisFirehoseTransformedStateOk
	ResultDropped          Result = events.KinesisFirehoseTransformedStateDropped
	ResultProcessingFailed Result = events.KinesisFirehoseTransformedStateProcessingFailed
)

func (r Result) Valid() bool {
	switch r {
	case ResultOk, ResultDropped, ResultProcessingFailed:
		return true
	}
	return false
}

// KinesisRecordMetadata is only present when the delivery stream reads
// from a Kinesis data stream.
type KinesisRecordMetadata struct {
	ShardID                     string `json:"shardId,omitempty"`
	PartitionKey                string `json:"partitionKey,omitempty"`
	ApproximateArrivalTimestamp int64  `json:"approximateArrivalTimestamp,omitempty"`
	SequenceNumber              string `json:"sequenceNumber,omitempty"`
	SubsequenceNumber           int64  `json:"subsequenceNumber,omitempty"`
}

// InputRecord.Data stays base64 text; decoding is the processor's job so
// that a malformed record can be reported against its recordId.
type InputRecord struct {
	RecordID                    string                 `json:"recordId"`
	ApproximateArrivalTimestamp int64                  `json:"approximateArrivalTimestamp,omitempty"`
	Data                        string                 `json:"data"`
	KinesisRecordMetadata       *KinesisRecordMetadata `json:"kinesisRecordMetadata,omitempty"`
}

type InputBatch struct {
	InvocationID           string        `json:"invocationId,omitempty"`
	DeliveryStreamArn      string        `json:"deliveryStreamArn,omitempty"`
	SourceKinesisStreamArn string        `json:"sourceKinesisStreamArn,omitempty"`
	Region                 string        `json:"region,omitempty"`
	Records                []InputRecord `json:"records"`
}

type OutputMetadata struct {
	PartitionKeys map[string]string `json:"partitionKeys"`
}

type OutputRecord struct {
	RecordID string          `json:"recordId"`
	Result   Result          `json:"result"`
	Data     string          `json:"data"`
	Metadata *OutputMetadata `json:"metadata,omitempty"`
}

// OutputBatch.Records is never nil so an empty batch marshals as [].
type OutputBatch struct {
	Records []OutputRecord `json:"records"`
}
