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

import "fmt"

// BuildInfo 代表程序构建信息
type BuildInfo struct {
	Version string
	GitHash string
	Time    string
}

// String 返回适合写入启动日志一行的构建信息摘要
func (b BuildInfo) String() string {
	if b.GitHash == "" && b.Time == "" {
		return b.Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.GitHash, b.Time)
}

var (
	buildVersion string
	buildTime    string
	buildHash    string
)

// GetBuildInfo 返回当前进程的构建信息
//
// Version 字段在没有通过 -ldflags 注入 buildVersion 时回退到 common.Version
// 这样未经定制构建流程的开发环境下 redline-server 启动日志里也能看到
// 一个有意义的版本号 而不是空字符串
func GetBuildInfo() BuildInfo {
	version := buildVersion
	if version == "" {
		version = Version
	}
	return BuildInfo{
		Version: version,
		GitHash: buildHash,
		Time:    buildTime,
	}
}
