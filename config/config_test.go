package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "0123456789abcdef0123"},
		Engine: EngineConfig{Timezone: "Asia/Jakarta", ScoreMin: 1, ScoreMax: 5},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过: %v", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("期望短密钥校验失败")
	}
}

func TestValidate_ScoreRange(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.ScoreMin = 6
	if err := cfg.Validate(); err == nil {
		t.Error("期望 score_min > score_max 校验失败")
	}
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("期望无效时区校验失败")
	}
}

func TestEngineConfig_IsDateSensitive(t *testing.T) {
	e := EngineConfig{DateSensitiveFeatures: []string{"checklist_area"}}
	if !e.IsDateSensitive("checklist_area") {
		t.Error("checklist_area 应按日期解析")
	}
	if e.IsDateSensitive("eval_team") {
		t.Error("eval_team 不应按日期解析")
	}
}

func TestEngineConfig_LocationFallback(t *testing.T) {
	e := EngineConfig{Timezone: "nope"}
	if e.Location() != time.UTC {
		t.Error("无效时区应回退到 UTC")
	}
}
