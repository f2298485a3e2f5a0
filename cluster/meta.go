// MIT License
//
// Copyright (c) 2022-2026 Arsene Tochemey Gandote
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cluster

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tochemey/warden/address"
)

const (
	metaHost = "host"
	metaPort = "port"
	metaUID  = "uid"
)

// encodeNode serializes the node incarnation gossiped as memberlist meta
func encodeNode(node address.Node) ([]byte, error) {
	meta, err := structpb.NewStruct(map[string]any{
		metaHost: node.Host(),
		metaPort: node.Port(),
		metaUID:  node.UID(),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(meta)
}

// decodeNode rebuilds the node incarnation from memberlist meta
func decodeNode(bytea []byte) (address.Node, error) {
	meta := new(structpb.Struct)
	if err := proto.Unmarshal(bytea, meta); err != nil {
		return address.Node{}, err
	}

	fields := meta.GetFields()
	node := address.NodeFrom(
		fields[metaHost].GetStringValue(),
		int(fields[metaPort].GetNumberValue()),
		fields[metaUID].GetStringValue(),
	)

	if err := node.Validate(); err != nil {
		return address.Node{}, fmt.Errorf("malformed node meta: %w", err)
	}
	return node, nil
}
