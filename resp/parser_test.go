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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserNewRequiresArray(t *testing.T) {
	_, err := NewParser(NewSimple("OK"))
	assert.Error(t, err)
}

func TestParserNextString(t *testing.T) {
	p, err := NewParser(NewArray(NewSimple("SET"), NewBulk([]byte("key"))))
	require.NoError(t, err)

	s, err := p.NextString()
	require.NoError(t, err)
	assert.Equal(t, "SET", s)

	s, err = p.NextString()
	require.NoError(t, err)
	assert.Equal(t, "key", s)

	_, err = p.NextString()
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestParserNextBytes(t *testing.T) {
	p, err := NewParser(NewArray(NewBulk([]byte("value"))))
	require.NoError(t, err)

	b, err := p.NextBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), b)
}

func TestParserNextInt(t *testing.T) {
	p, err := NewParser(NewArray(NewInteger(42), NewBulk([]byte("7"))))
	require.NoError(t, err)

	n, err := p.NextInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	n, err = p.NextInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestParserNextIntInvalid(t *testing.T) {
	p, err := NewParser(NewArray(NewBulk([]byte("nope"))))
	require.NoError(t, err)

	_, err = p.NextInt()
	assert.Error(t, err)
}

func TestParserFinish(t *testing.T) {
	p, err := NewParser(NewArray(NewBulk([]byte("GET")), NewBulk([]byte("key"))))
	require.NoError(t, err)

	_, _ = p.NextString()
	assert.Error(t, p.Finish())

	_, _ = p.NextString()
	assert.NoError(t, p.Finish())
}

func TestParserWrongTypeErrors(t *testing.T) {
	p, err := NewParser(NewArray(NewInteger(1)))
	require.NoError(t, err)

	_, err = p.NextString()
	assert.Error(t, err)
}

func TestParserNextStringRejectsInvalidUTF8(t *testing.T) {
	p, err := NewParser(NewArray(NewBulk([]byte{0xff, 0xfe, 0xfd})))
	require.NoError(t, err)

	_, err = p.NextString()
	assert.Error(t, err)
}
