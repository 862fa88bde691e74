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
	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/store"
)

// Get 对应 GET key
type Get struct {
	Key string
}

func parseGet(p *resp.Parser) (Get, error) {
	key, err := p.NextString()
	if err != nil {
		return Get{}, err
	}
	return Get{Key: key}, nil
}

// Apply 求值 GET 命令 命中返回 Bulk 未命中返回 Null
func (c Get) Apply(s *store.Store) resp.Frame {
	v, ok := s.Get(c.Key)
	if !ok {
		return resp.NewNull()
	}
	return resp.NewBulk(v)
}

// ToFrame 将 GET 编码为请求帧
func (c Get) ToFrame() resp.Frame {
	return resp.NewArray(resp.NewBulk([]byte("get")), resp.NewBulk([]byte(c.Key)))
}
