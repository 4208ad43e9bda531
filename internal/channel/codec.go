package channel

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoder writes one message at a time to a stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads one message at a time from a stream.
type Decoder interface {
	Decode(v any) error
}

// Codec serializes envelopes for transports that carry bytes.
type Codec interface {
	Name() string
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// CodecByName returns the codec registered under name. An empty name means JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSON(), nil
	case CodecMsgpack:
		return Msgpack(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

// JSON returns the newline-delimited JSON codec.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Name() string                       { return CodecJSON }
func (jsonCodec) Binary() bool                       { return false }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) NewEncoder(w io.Writer) Encoder     { return json.NewEncoder(w) }
func (jsonCodec) NewDecoder(r io.Reader) Decoder     { return json.NewDecoder(r) }

type msgpackCodec struct{}

// Msgpack returns the MessagePack codec.
func Msgpack() Codec { return msgpackCodec{} }

func (msgpackCodec) Name() string                       { return CodecMsgpack }
func (msgpackCodec) Binary() bool                       { return true }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (msgpackCodec) NewEncoder(w io.Writer) Encoder     { return msgpack.NewEncoder(w) }
func (msgpackCodec) NewDecoder(r io.Reader) Decoder     { return msgpack.NewDecoder(r) }
