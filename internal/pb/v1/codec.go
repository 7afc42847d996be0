package v1

import (
	"fmt"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of the alarm store API.
const CodecName = "json"

// codec marshals messages as JSON.
type codec struct{}

func init() { //nolint:gochecknoinits // Codecs must be registered before any connection is made.
	encoding.RegisterCodec(codec{})
}

// Marshal encodes v as JSON.
func (codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}

	return data, nil
}

// Unmarshal decodes JSON data into v.
func (codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}

	return nil
}

// Name returns CodecName.
func (codec) Name() string {
	return CodecName
}
