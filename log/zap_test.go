// MIT License
//
// Copyright (c) 2022-2026 Arsene Tochemey Gandote
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZap(t *testing.T) {
	t.Run("With Debug log level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(DebugLevel, buffer)

		logger.Debug("test debug")
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "test debug", actual)

		lvl, err := extractLevel(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, DebugLevel.String(), lvl)
		require.Equal(t, DebugLevel, logger.LogLevel())

		buffer.Reset()
		logger.Debugf("hello %s", "world")
		actual, err = extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "hello world", actual)
	})
	t.Run("With Info log level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.Debug("test debug")
		require.Empty(t, buffer.String())

		logger.Infof("actor %s restarted", "a1")
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "actor a1 restarted", actual)
		require.Equal(t, InfoLevel, logger.LogLevel())
	})
	t.Run("With Warn log level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(WarningLevel, buffer)
		logger.Info("skipped")
		require.Empty(t, buffer.String())

		logger.Warn("watch on self ignored")
		lvl, err := extractLevel(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, WarningLevel.String(), lvl)
		require.Equal(t, WarningLevel, logger.LogLevel())
	})
	t.Run("With Error log level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(ErrorLevel, buffer)
		logger.Errorf("failed %d times", 3)
		actual, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "failed 3 times", actual)
		require.Equal(t, ErrorLevel, logger.LogLevel())
	})
	t.Run("With Panic log level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(PanicLevel, buffer)
		assert.Panics(t, func() { logger.Panic("boom") })
		assert.Panics(t, func() { logger.Panicf("boom %d", 1) })
		require.Equal(t, PanicLevel, logger.LogLevel())
	})
	t.Run("With unknown level defaults to debug", func(t *testing.T) {
		logger := NewZap(Level(42), new(bytes.Buffer))
		require.Equal(t, DebugLevel, logger.LogLevel())
	})
	t.Run("With structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("actor", "watcher", "node", "127.0.0.1:7000", "dangling").Info("started")

		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &m))
		require.Contains(t, m, "actor")
		require.Contains(t, m, "node")
		require.Contains(t, m, "_")
		require.Same(t, logger, logger.With())
	})
	t.Run("With outputs", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		require.Len(t, logger.LogOutput(), 1)
		require.NotNil(t, logger.StdLogger())
		require.NoError(t, logger.Flush())
	})
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger
	logger.Info("ignored")
	logger.Debugf("ignored %s", "value")
	require.Equal(t, InfoLevel, logger.LogLevel())
	require.Equal(t, DiscardLogger, logger.With("k", "v"))
	require.NoError(t, logger.Flush())
	require.NotNil(t, logger.StdLogger())
	assert.Panics(t, func() { logger.Panicf("boom %s", "now") })
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "info", InfoLevel.String())
	require.Equal(t, "debug", DebugLevel.String())
	require.Equal(t, "", InvalidLevel.String())
	require.Equal(t, "", Level(-1).String())
}

func extractMessage(bytes []byte) (string, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(bytes, &head); err != nil {
		return "", err
	}

	var msg string
	if err := json.Unmarshal(head["msg"], &msg); err != nil {
		return "", err
	}
	return msg, nil
}

func extractLevel(bytes []byte) (string, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(bytes, &head); err != nil {
		return "", err
	}

	var lvl string
	if err := json.Unmarshal(head["level"], &lvl); err != nil {
		return "", err
	}
	return lvl, nil
}
