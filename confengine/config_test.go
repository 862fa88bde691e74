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

package confengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loggerLikeOptions struct {
	Stdout bool   `config:"stdout"`
	Level  string `config:"level"`
}

func TestUnpackChildOrDefaultKeepsDefaultWhenMissing(t *testing.T) {
	conf, err := LoadContent([]byte("admin:\n  enabled: true\n"))
	require.NoError(t, err)

	opt := loggerLikeOptions{Stdout: true, Level: "info"}
	require.NoError(t, conf.UnpackChildOrDefault("logger", &opt))
	assert.Equal(t, loggerLikeOptions{Stdout: true, Level: "info"}, opt)
}

func TestUnpackChildOrDefaultOverridesWhenPresent(t *testing.T) {
	conf, err := LoadContent([]byte("logger:\n  stdout: false\n  level: debug\n"))
	require.NoError(t, err)

	opt := loggerLikeOptions{Stdout: true, Level: "info"}
	require.NoError(t, conf.UnpackChildOrDefault("logger", &opt))
	assert.Equal(t, loggerLikeOptions{Stdout: false, Level: "debug"}, opt)
}
