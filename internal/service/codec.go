package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec lets Connect carry the plain Go message structs of this package
// as application/json. It replaces Connect's protobuf JSON codec, which only
// accepts generated proto messages.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// WithJSON is the codec option handlers and clients of BillSplitService need.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
