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

package server

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Config 描述 RESP 接入服务的行为
//
// 与 server/server.go（旧）中 admin HTTP 的 Config 一样用
// `config:"..."` 标签 可以直接被 confengine.Config.UnpackChild 解码
type Config struct {
	// Address 监听地址 默认 127.0.0.1:6379
	Address string `config:"address"`

	// MaxConnections 同时处理的连接数上限 许可在 accept 之前获取 超出的连接
	// 在有许可空出之前不会被 accept
	MaxConnections int `config:"max_connections"`

	// AcceptBackoffMax 是 Accept 连续失败时指数退避的上限 超过该值视为致命错误
	AcceptBackoffMax time.Duration `config:"accept_backoff_max"`
}

// Validate 汇总配置中的全部问题 而不是在第一个错误处就返回
//
// 与 controller/portpools.go 聚合每个端口池处理失败原因的做法一致：
// 调用方一次性看到全部不合法的字段 而不用反复修正再重试
func (c Config) Validate() error {
	var errs error
	if c.Address == "" {
		errs = multierror.Append(errs, errors.New("server: address must not be empty"))
	}
	if c.MaxConnections <= 0 {
		errs = multierror.Append(errs, errors.New("server: max_connections must be positive"))
	}
	if c.AcceptBackoffMax <= 0 {
		errs = multierror.Append(errs, errors.New("server: accept_backoff_max must be positive"))
	}
	return errs
}

// DefaultConfig 返回 redline-server 未提供任何配置时使用的默认值
func DefaultConfig() Config {
	return Config{
		Address:          "127.0.0.1:6379",
		MaxConnections:   250,
		AcceptBackoffMax: 64 * time.Second,
	}
}
