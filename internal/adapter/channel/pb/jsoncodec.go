// Package pb holds the hand-maintained contract for the central authority's
// CentralSupply service. The authority speaks JSON payloads over gRPC, so the
// message types here are plain structs and the codec below is registered for
// the "json" content subtype. Clients created by NewCentralSupplyClient
// select it per call.
package pb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype for the authority's JSON payloads.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}
