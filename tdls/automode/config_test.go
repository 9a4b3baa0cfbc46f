/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package automode

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.FastConnectPeriod = 2 * time.Second
	cfg.SlowConnectPeriod = time.Second
	require.Error(t, cfg.Validate())

	// equal cadences are rejected too, the inequality is strict
	cfg = DefaultConfig()
	cfg.FastConnectPeriod = time.Second
	cfg.SlowConnectPeriod = time.Second
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FastConnectPeriod = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DataTeardownPeriod = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RSSITeardownPeriod = -time.Second
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RSSIConnectThreshold = 10
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RSSITeardownThreshold = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RSSITeardownThreshold = -110
	require.Error(t, cfg.Validate())
}

func TestReadConfig(t *testing.T) {
	cfgData := `rssi_connect_threshold: -68
data_connect_threshold: 20000
fast_connect_period: 2000000000
slow_connect_period: 60000000000
rssi_teardown_count: 5
`
	path := filepath.Join(t.TempDir(), "tdls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfgData), 0644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, -68, cfg.RSSIConnectThreshold)
	require.Equal(t, uint64(20000), cfg.DataConnectThreshold)
	require.Equal(t, 2*time.Second, cfg.FastConnectPeriod)
	require.Equal(t, time.Minute, cfg.SlowConnectPeriod)
	require.Equal(t, uint(5), cfg.RSSITeardownCount)
	// untouched fields keep their defaults
	require.Equal(t, DefaultConfig().DataTeardownPeriod, cfg.DataTeardownPeriod)
	require.NoError(t, cfg.Validate())
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_option: 1\n"), 0644))
	_, err = ReadConfig(path)
	require.Error(t, err)
}
