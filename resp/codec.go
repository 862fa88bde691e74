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

package resp

import (
	"bufio"
	"io"

	"github.com/packetd/redline/common"
)

// Codec 在一条 net.Conn 之上提供帧粒度的读写
//
// 读取使用一个会随输入增长的缓冲区 写入直接走 bufio.Writer 并在每帧
// 之后 flush 以保证对端能及时看到回复 不依赖后续写入触发缓冲区刷新
type Codec struct {
	r   io.Reader
	w   *bufio.Writer
	buf []byte
	// cursor 标记 buf 中尚未被消费的起始位置
	cursor int
}

// NewCodec 包装一个双向连接 初始读缓冲区大小为 common.ReadWriteBlockSize
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		r:   rw,
		w:   bufio.NewWriterSize(rw, common.ReadWriteBlockSize),
		buf: make([]byte, 0, common.ReadWriteBlockSize),
	}
}

// ReadFrame 读取下一帧 当对端在帧边界处正常关闭连接时返回 (Frame{}, false, nil)
//
// 如果对端在帧中途关闭连接 返回 ErrConnReset
func (c *Codec) ReadFrame() (Frame, bool, error) {
	for {
		if n, err := check(c.buf[c.cursor:]); err == nil {
			f, _, perr := parse(c.buf[c.cursor:])
			if perr != nil {
				return Frame{}, false, perr
			}
			c.cursor += n
			c.compact()
			return f, true, nil
		} else if err != ErrIncomplete {
			return Frame{}, false, err
		}

		if cap(c.buf)-len(c.buf) < common.ReadWriteBlockSize {
			grown := make([]byte, len(c.buf), 2*cap(c.buf)+common.ReadWriteBlockSize)
			copy(grown, c.buf)
			c.buf = grown
		}

		n, err := c.r.Read(c.buf[len(c.buf):cap(c.buf)])
		if n > 0 {
			c.buf = c.buf[:len(c.buf)+n]
		}
		if err != nil {
			if err == io.EOF {
				if len(c.buf) == c.cursor {
					return Frame{}, false, nil
				}
				return Frame{}, false, ErrConnReset
			}
			return Frame{}, false, err
		}
	}
}

// compact 丢弃已消费的前缀 避免缓冲区无限增长
func (c *Codec) compact() {
	if c.cursor == 0 {
		return
	}
	remaining := copy(c.buf, c.buf[c.cursor:])
	c.buf = c.buf[:remaining]
	c.cursor = 0
}

// WriteFrame 编码并发送一帧 随后立即 flush
func (c *Codec) WriteFrame(f Frame) error {
	if err := writeFrame(c.w, f, true); err != nil {
		return err
	}
	return c.w.Flush()
}
