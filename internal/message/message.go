// Package message defines the messages a touch client sends and their JSON
// wire form: one object per frame, tag in "t", payload in "d".
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Wire tags
const (
	TagDimensions  = "d"
	TagTouchUpdate = "tu"
	TagTouchEnd    = "te"
)

// ErrUndecodable is wrapped by every Decode failure.
var ErrUndecodable = errors.New("undecodable message")

// Message is one of DimensionsUpdate, TouchUpdate or TouchEnd.
type Message interface {
	Tag() string
	isMessage()
}

// DimensionsData describes the client surface.
type DimensionsData struct {
	Width      int32 `json:"width"`
	Height     int32 `json:"height"`
	Resolution int32 `json:"resolution"`
}

// Touch is a single contact reported by the client.
type Touch struct {
	ID            int32   `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	RadiusX       float32 `json:"rx"`
	RadiusY       float32 `json:"ry"`
	RotationAngle float32 `json:"ra"`
	Pressure      float32 `json:"p"`
}

// DimensionsUpdate announces or resizes the surface.
type DimensionsUpdate struct {
	DimensionsData
}

// TouchUpdate carries touches that moved or appeared.
type TouchUpdate struct {
	Touches []Touch
}

// TouchEnd carries the ids of touches that ended.
type TouchEnd struct {
	IDs []int32
}

func (DimensionsUpdate) Tag() string { return TagDimensions }
func (TouchUpdate) Tag() string      { return TagTouchUpdate }
func (TouchEnd) Tag() string         { return TagTouchEnd }

func (DimensionsUpdate) isMessage() {}
func (TouchUpdate) isMessage()      {}
func (TouchEnd) isMessage()         {}

type envelope struct {
	Tag     string          `json:"t"`
	Payload json.RawMessage `json:"d"`
}

// Decode parses one wire message.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return nil, fmt.Errorf("%w: missing payload for tag %q", ErrUndecodable, env.Tag)
	}

	switch env.Tag {
	case TagDimensions:
		var d DimensionsData
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return nil, fmt.Errorf("%w: dimensions: %v", ErrUndecodable, err)
		}
		return DimensionsUpdate{d}, nil
	case TagTouchUpdate:
		var touches []Touch
		if err := json.Unmarshal(env.Payload, &touches); err != nil {
			return nil, fmt.Errorf("%w: touch update: %v", ErrUndecodable, err)
		}
		return TouchUpdate{Touches: touches}, nil
	case TagTouchEnd:
		var ids []int32
		if err := json.Unmarshal(env.Payload, &ids); err != nil {
			return nil, fmt.Errorf("%w: touch end: %v", ErrUndecodable, err)
		}
		return TouchEnd{IDs: ids}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %q", ErrUndecodable, env.Tag)
	}
}

// Encode produces the wire form of msg.
func Encode(msg Message) ([]byte, error) {
	var payload interface{}

	switch m := msg.(type) {
	case DimensionsUpdate:
		payload = m.DimensionsData
	case TouchUpdate:
		payload = nonNil(m.Touches)
	case TouchEnd:
		payload = nonNil(m.IDs)
	default:
		return nil, fmt.Errorf("cannot encode %T", msg)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Tag: msg.Tag(), Payload: raw})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
