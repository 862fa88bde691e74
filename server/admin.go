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
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/packetd/redline/confengine"
	"github.com/packetd/redline/logger"
)

// AdminConfig 描述可选的运维 HTTP 面板 暴露 /metrics 与 /-/logger
type AdminConfig struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Pprof   bool          `config:"pprof"`
	Timeout time.Duration `config:"timeout"`
}

// Admin 是暴露 Prometheus 指标与日志级别调整端点的 HTTP 服务
//
// 直接沿用旧版 admin HTTP 服务（原 server.Server）的结构 只是把它的
// 数据包指标路由换成了存储相关的 /metrics 与 /-/logger 端点
type Admin struct {
	config AdminConfig
	router *mux.Router
	server *http.Server
}

// NewAdmin 创建 Admin 实例 当 admin 分区缺失或 .Enabled 为 false 时返回空指针
func NewAdmin(conf *confengine.Config) (*Admin, error) {
	var config AdminConfig
	if err := conf.UnpackChildOrDefault("admin", &config); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, nil
	}

	router := mux.NewRouter()
	a := &Admin{
		config: config,
		router: router,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
	a.registerGetRoute("/metrics", promhttp.Handler().ServeHTTP)
	a.registerPostRoute("/-/logger", a.handleSetLoggerLevel)
	if config.Pprof {
		a.registerPprofRoutes()
	}
	return a, nil
}

// ListenAndServe 启动 admin HTTP 服务并阻塞直到它退出
func (a *Admin) ListenAndServe() error {
	l, err := net.Listen("tcp", a.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("admin surface listening on %s", a.config.Address)
	return a.server.Serve(l)
}

// handleSetLoggerLevel 允许运维通过 POST /-/logger?level=debug 动态调整日志级别
func (a *Admin) handleSetLoggerLevel(w http.ResponseWriter, r *http.Request) {
	lvl := r.URL.Query().Get("level")
	if lvl == "" {
		http.Error(w, "missing level query parameter", http.StatusBadRequest)
		return
	}
	logger.SetLoggerLevel(lvl)
	w.WriteHeader(http.StatusNoContent)
}

func (a *Admin) registerGetRoute(path string, f http.HandlerFunc) {
	a.router.Methods(http.MethodGet).Path(path).HandlerFunc(f)
}

func (a *Admin) registerPostRoute(path string, f http.HandlerFunc) {
	a.router.Methods(http.MethodPost).Path(path).HandlerFunc(f)
}

func (a *Admin) registerPprofRoutes() {
	a.registerGetRoute("/debug/pprof/cmdline", pprof.Cmdline)
	a.registerGetRoute("/debug/pprof/profile", pprof.Profile)
	a.registerGetRoute("/debug/pprof/symbol", pprof.Symbol)
	a.registerGetRoute("/debug/pprof/trace", pprof.Trace)
	a.registerGetRoute("/debug/pprof/{other}", pprof.Index)
}
