// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"math"

	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/store"
)

// Publish 对应 PUBLISH channel message
type Publish struct {
	Channel string
	Message []byte
}

func parsePublish(p *resp.Parser) (Publish, error) {
	channel, err := p.NextString()
	if err != nil {
		return Publish{}, err
	}
	msg, err := p.NextBytes()
	if err != nil {
		return Publish{}, err
	}
	return Publish{Channel: channel, Message: msg}, nil
}

// Apply 求值 PUBLISH 命令 回复收到消息的订阅者数量
//
// 订阅者数量在编码为 RESP Integer 前会被限制在 uint32 的取值范围内
func (c Publish) Apply(s *store.Store) resp.Frame {
	n := s.Publish(c.Channel, c.Message)
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	return resp.NewInteger(uint64(n))
}

// ToFrame 将 PUBLISH 编码为请求帧
func (c Publish) ToFrame() resp.Frame {
	return resp.NewArray(
		resp.NewBulk([]byte("publish")),
		resp.NewBulk([]byte(c.Channel)),
		resp.NewBulk(c.Message),
	)
}
