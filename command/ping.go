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

import "github.com/packetd/redline/resp"

// Ping 对应 PING [message] 没有参数时服务端回复 PONG 否则原样回显参数
type Ping struct {
	Message []byte // nil 表示没有携带消息
}

func parsePing(p *resp.Parser) (Ping, error) {
	b, err := p.NextBytes()
	if err == resp.ErrEndOfStream {
		return Ping{}, nil
	}
	if err != nil {
		return Ping{}, err
	}
	return Ping{Message: b}, nil
}

// Apply 求值 PING 命令
func (c Ping) Apply() resp.Frame {
	if c.Message == nil {
		return resp.NewSimple("PONG")
	}
	return resp.NewBulk(c.Message)
}

// ToFrame 将 PING 编码为请求帧
func (c Ping) ToFrame() resp.Frame {
	if c.Message == nil {
		return resp.NewArray(resp.NewBulk([]byte("ping")))
	}
	return resp.NewArray(resp.NewBulk([]byte("ping")), resp.NewBulk(c.Message))
}
