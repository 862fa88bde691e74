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

// Unknown 表示一个无法识别的命令名称
type Unknown struct {
	CommandName string
}

// Apply 求值一个未知命令 总是回复一个错误帧
func (c Unknown) Apply() resp.Frame {
	return resp.NewError("ERR unknown command '" + c.CommandName + "'")
}
