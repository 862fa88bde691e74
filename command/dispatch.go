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
	"github.com/pkg/errors"

	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/store"
)

// Apply 在连接的普通模式下求值命令
//
// SUBSCRIBE 会把连接切换到订阅模式 不应该从这里求值 调用方需要在
// 分发前单独判断 Name == NameSubscribe 并转交给订阅会话循环处理
// UNSUBSCRIBE 在普通模式下没有意义 只在订阅会话内部合法 因此这里
// 返回 ErrUnsubscribeUnsupported
func (c Command) Apply(s *store.Store) (resp.Frame, error) {
	switch c.Name {
	case NamePing:
		return c.Ping.Apply(), nil
	case NameGet:
		return c.Get.Apply(s), nil
	case NameSet:
		return c.Set.Apply(s), nil
	case NamePublish:
		return c.Publish.Apply(s), nil
	case NameUnsubscribe:
		return resp.Frame{}, ErrUnsubscribeUnsupported
	case NameUnknown:
		return c.Unknown.Apply(), nil
	default:
		return resp.Frame{}, errors.Errorf("command: %s cannot be applied outside of a subscribe session", c.Name)
	}
}
