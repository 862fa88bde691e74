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

// Command redline-server 运行 RESP 接入服务
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/packetd/redline/common"
	"github.com/packetd/redline/confengine"
	"github.com/packetd/redline/internal/sigs"
	"github.com/packetd/redline/logger"
	"github.com/packetd/redline/server"
	"github.com/packetd/redline/shutdown"
	"github.com/packetd/redline/store"
)

var (
	port         uint16
	configPath   string
	adminAddress string
)

var rootCmd = &cobra.Command{
	Use:   "redline-server",
	Short: "Run the redline RESP-compatible key/value and pub/sub service",
	Example: "  redline-server --port 6379\n" +
		"  redline-server --config redline.yaml",
	RunE: run,
}

func init() {
	rootCmd.Flags().Uint16Var(&port, "port", 6379, "TCP port to bind")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML configuration file path")
	rootCmd.Flags().StringVar(&adminAddress, "admin-address", "", "Optional admin HTTP surface address, e.g. 127.0.0.1:9100")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	config := server.DefaultConfig()
	config.Address = fmt.Sprintf("127.0.0.1:%d", port)

	var admin *server.Admin
	if configPath != "" {
		conf, err := confengine.LoadConfigPath(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logOpt := logger.Options{Stdout: true}
		if err := conf.UnpackChildOrDefault("logger", &logOpt); err != nil {
			return fmt.Errorf("failed to load logger config: %w", err)
		}
		logger.SetOptions(logOpt)

		admin, err = server.NewAdmin(conf)
		if err != nil {
			return fmt.Errorf("failed to initialize admin surface: %w", err)
		}
	} else if adminAddress != "" {
		conf, err := confengine.LoadContent([]byte(fmt.Sprintf("admin:\n  enabled: true\n  address: %q\n", adminAddress)))
		if err != nil {
			return fmt.Errorf("failed to build admin config: %w", err)
		}
		admin, err = server.NewAdmin(conf)
		if err != nil {
			return fmt.Errorf("failed to initialize admin surface: %w", err)
		}
	}

	s := store.New()
	listener, err := server.NewListener(config, s)
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}

	notifier := shutdown.New()
	var drain sync.WaitGroup

	go watchReload(notifier)

	if admin != nil {
		go func() {
			if err := admin.ListenAndServe(); err != nil {
				logger.Warnf("admin surface exited: %v", err)
			}
		}()
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- listener.Run(notifier, &drain)
	}()

	logger.Infof("redline-server %s listening on %s", common.GetBuildInfo(), config.Address)

	var acceptErr error
	select {
	case <-sigs.Terminate():
		logger.Infof("received termination signal, shutting down")
	case acceptErr = <-runErr:
		if acceptErr != nil {
			logger.Errorf("listener exited: %v", acceptErr)
		}
	}

	notifier.Broadcast()
	drain.Wait()
	s.ShutdownPurgeTask()

	return acceptErr
}

// watchReload 在收到 SIGHUP 时重新读取 --config 指向的文件并应用其中的日志配置
//
// 进程本身不会重建监听套接字或 Store 只有日志级别/输出目标这类可以
// 安全热更新的设置会被重新应用
func watchReload(notifier *shutdown.Notifier) {
	reload := sigs.Reload()
	for {
		select {
		case <-reload:
			reloadLoggerConfig()
		case <-notifier.C():
			return
		}
	}
}

func reloadLoggerConfig() {
	if configPath == "" {
		logger.Warnf("received reload signal but no --config file was provided")
		return
	}

	conf, err := confengine.LoadConfigPath(configPath)
	if err != nil {
		logger.Warnf("failed to reload config: %v", err)
		return
	}

	logOpt := logger.Options{Stdout: true}
	if err := conf.UnpackChildOrDefault("logger", &logOpt); err != nil {
		logger.Warnf("failed to reload logger config: %v", err)
		return
	}
	logger.SetOptions(logOpt)
	logger.Infof("reloaded logger configuration from %s", configPath)
}
