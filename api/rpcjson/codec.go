// Package rpcjson carries gRPC messages as JSON. Services in api/ are plain Go structs and
// hand-written service descriptors that ride on this codec (content-subtype "json").
package rpcjson

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// Name is the codec name and gRPC content-subtype.
const Name = "json"

// Codec implements encoding.Codec with encoding/json.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return Name }

func init() {
	encoding.RegisterCodec(Codec{})
}

// CallOption selects the JSON codec for a client call. Pass it to grpc.WithDefaultCallOptions.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(Name)
}
