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

// Command redline-cli 是 redline 服务端的交互式命令行客户端
package main

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/packetd/redline/client"
)

var (
	hostname string
	port     uint16
)

var rootCmd = &cobra.Command{
	Use:   "redline-cli",
	Short: "Issue redline commands from the command line",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&hostname, "hostname", "127.0.0.1", "Server hostname")
	rootCmd.PersistentFlags().Uint16Var(&port, "port", 6379, "Server port")

	rootCmd.AddCommand(pingCmd, getCmd, setCmd, publishCmd, subscribeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addr() string {
	return fmt.Sprintf("%s:%d", hostname, port)
}

func connect() (*client.Client, error) {
	return client.Connect(addr())
}

// formatReply 打印服务端返回值：能解码为合法 UTF-8 的打印为带引号的字符串
// 否则退回到其字节的调试表示
func formatReply(b []byte) string {
	if utf8.Valid(b) {
		return fmt.Sprintf("%q", string(b))
	}
	return fmt.Sprintf("%v", b)
}

var pingCmd = &cobra.Command{
	Use:   "ping [message]",
	Short: "Ping the server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect()
		if err != nil {
			return err
		}
		defer c.Close()

		var msg []byte
		if len(args) == 1 {
			msg = []byte(args[0])
		}

		v, err := c.Ping(msg)
		if err != nil {
			return err
		}
		fmt.Println(formatReply(v))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get key",
	Short: "Get a value by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect()
		if err != nil {
			return err
		}
		defer c.Close()

		v, ok, err := c.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(nil)")
			return nil
		}
		fmt.Println(formatReply(v))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set key value [milliseconds]",
	Short: "Set a key to a value, optionally with an expiration in milliseconds",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect()
		if err != nil {
			return err
		}
		defer c.Close()

		key, value := args[0], []byte(args[1])
		if len(args) == 2 {
			return c.Set(key, value)
		}

		ms, err := cast.ToInt64E(args[2])
		if err != nil {
			return fmt.Errorf("invalid milliseconds value %q: %w", args[2], err)
		}
		return c.SetExpires(key, value, time.Duration(ms)*time.Millisecond)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish channel message",
	Short: "Publish a message to a channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Publish(args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("(integer) %d\n", n)
		return nil
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe channel [channel ...]",
	Short: "Subscribe to one or more channels and print incoming messages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect()
		if err != nil {
			return err
		}
		defer c.Close()

		sub, err := c.Subscribe(args)
		if err != nil {
			return err
		}

		for {
			msg, ok, err := sub.NextMessage()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			fmt.Printf("got message from channel %s: %s\n", msg.Channel, formatReply(msg.Content))
		}
	},
}
