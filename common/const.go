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

package common

const (
	// App 应用程序名称
	App = "redline"

	// Version 应用程序版本
	Version = "v0.0.1"

	// ReadWriteBlockSize 每条连接读写缓冲区的初始大小
	//
	// 绝大多数 RESP 请求帧远小于 4K 读缓冲区会随超大 Bulk 按需增长
	// 这里只决定每条连接的常驻内存开销
	ReadWriteBlockSize = 4096
)
