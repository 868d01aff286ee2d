package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"SpaceArmada/internal/battle"
)

const (
	msgSnapshot = "snapshot"
	msgResult   = "result"
	msgError    = "error"
)

// streamMsg is one frame of the battle stream.
type streamMsg struct {
	Type     string           `json:"type"`
	Battle   string           `json:"battle"`
	Snapshot *battle.Snapshot `json:"snapshot,omitempty"`
	Result   *battle.Result   `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type createBattleResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Stream string          `json:"stream"`
	State  battle.Snapshot `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toStruct converts a JSON-shaped value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	return structpb.NewStruct(fields)
}

// encodeProto renders a stream frame as a binary protobuf Struct.
func encodeProto(msg streamMsg) ([]byte, error) {
	s, err := toStruct(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// decodeProto is the inverse of encodeProto, for clients written in Go.
func decodeProto(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}
