package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	// Run from a temp directory so a developer's local config.yaml is not picked up
	tempDir, err := os.MkdirTemp("", "arbor-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 100, cfg.Conversation.HistoryCapacity)
	assert.Equal(suite.T(), 5, cfg.Conversation.RecentWindow)
	assert.Equal(suite.T(), 4000, cfg.Conversation.MaxMessageLen)
	assert.True(suite.T(), cfg.Conversation.RateLimitEnabled)
	assert.Equal(suite.T(), time.Second, cfg.Conversation.RateLimitRefillRate)
	assert.True(suite.T(), cfg.Conversation.TranscriptEnabled)

	assert.Equal(suite.T(), "llama3.1", cfg.LLM.Model)
	assert.Equal(suite.T(), 1024, cfg.LLM.MaxNewTokens)
	assert.Equal(suite.T(), 60*time.Second, cfg.LLM.Timeout)

	assert.Equal(suite.T(), 30*time.Second, cfg.Tree.AutosaveInterval)
	assert.Equal(suite.T(), 256, cfg.Tree.SummaryCacheCapacity)
	assert.NotEmpty(suite.T(), cfg.Arbor.Database.Path)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
arbor:
  data_dir: "./test-data"
  database:
    path: "test.db"
conversation:
  history_capacity: 50
  recent_window: 3
  max_message_len: 2000
llm:
  model: "test-model"
  temperature: 0.2
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "./test-data", cfg.Arbor.DataDir)
	assert.Equal(suite.T(), "test.db", cfg.Arbor.Database.Path)
	assert.Equal(suite.T(), 50, cfg.Conversation.HistoryCapacity)
	assert.Equal(suite.T(), 3, cfg.Conversation.RecentWindow)
	assert.Equal(suite.T(), 2000, cfg.Conversation.MaxMessageLen)
	assert.Equal(suite.T(), "test-model", cfg.LLM.Model)
	assert.InDelta(suite.T(), 0.2, cfg.LLM.Temperature, 0.001)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
conversation:
  history_capacity: 50
  invalid_yaml: [unclosed bracket
`

	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Conversation.HistoryCapacity, AppConfig.Conversation.HistoryCapacity)
}
