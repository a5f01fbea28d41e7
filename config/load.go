package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RESUMATCH_SCORING_SKILL_WEIGHT.
const EnvPrefix = "RESUMATCH"

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are given)
// into the process environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// NewViper returns a viper instance that knows every settings key, so environment
// overrides apply even when the key is absent from the config file.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("corpus_backend", d.CorpusBackend)
	v.SetDefault("database_url", "")
	v.SetDefault("corpus_limit", d.CorpusLimit)
	v.SetDefault("vocabulary_file", "")
	v.SetDefault("workers", d.Workers)
	v.SetDefault("batch_concurrency", d.BatchConcurrency)
	v.SetDefault("max_upload_bytes", d.MaxUploadBytes)
	v.SetDefault("preview_length", d.PreviewLength)
	v.SetDefault("scoring.content_weight", d.Scoring.ContentWeight)
	v.SetDefault("scoring.skill_weight", d.Scoring.SkillWeight)
	v.SetDefault("scoring.section_weight", d.Scoring.SectionWeight)
	v.SetDefault("scoring.skill_denominator", string(d.Scoring.SkillDenominator))
	v.SetDefault("quota.ocr_pages", d.Quota.OCRPages)
	v.SetDefault("quota.trigger_invocations", d.Quota.TriggerInvocations)
	v.SetDefault("quota.storage_bytes", d.Quota.StorageBytes)
	v.SetDefault("ocr.backend", d.OCR.Backend)
	v.SetDefault("ocr.url", "")
	v.SetDefault("ocr.timeout", d.OCR.Timeout)
	v.SetDefault("ocr.max_retries", d.OCR.MaxRetries)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	return v
}

// Load reads settings from path (optional) and the environment using v, applies
// defaults and validates the result.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if v == nil {
		v = NewViper()
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	settings.ApplyDefaults()

	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return &settings, nil
}
