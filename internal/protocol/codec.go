package protocol

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a hand-written replacement for grpc-go's built-in "proto"
// codec. This service has no .proto file checked in (see DESIGN.md) and no
// protoc-generated stubs, so the request/response types in messages.go are
// plain Go structs rather than generated proto.Message implementations, so
// grpc's default codec can't marshal them. Registering a codec under the
// name "proto" overrides the one grpc.NewServer would otherwise select by
// default, so ordinary grpc-go clients (which negotiate content-subtype
// "proto" unless told otherwise) transparently get JSON wire framing
// instead of protobuf. This is the same codec-substitution technique used
// to run gRPC services without a protobuf toolchain at all.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "proto"
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
