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

// Package labels 提供标签集合的指纹计算
//
// redline 用它为每条连接生成一个稳定的指纹 (remote_addr, conn_id)
// 方便日志与指标按同一个值关联同一条连接产生的全部事件
package labels

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/bytebufferpool"
)

// Label 是一对名值标签
type Label struct {
	Name  string
	Value string
}

// Labels 是一组标签 指纹计算前会先按 Name 排序以保证稳定性
type Labels []Label

// sep 分隔名与值 避免 ("ab","c") 与 ("a","bc") 算出同一个指纹
const sep = '\xff'

// Hash 返回标签集合的 xxhash 指纹
//
// 同一组标签不论传入顺序如何 总是得到相同的指纹
func (ls Labels) Hash() uint64 {
	sorted := append(Labels(nil), ls...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, l := range sorted {
		buf.WriteString(l.Name)
		buf.WriteByte(sep)
		buf.WriteString(l.Value)
		buf.WriteByte(sep)
	}
	return xxhash.Sum64(buf.Bytes())
}
