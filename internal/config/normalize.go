package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	c.normalizeEvaluation()
	c.normalizeSegmentation()
	c.normalizeTranscripts()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RunsDir) == "" {
		c.Paths.RunsDir = defaultRunsDir
	}
	if c.Paths.RunsDir, err = expandPath(c.Paths.RunsDir); err != nil {
		return fmt.Errorf("paths.runs_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() error {
	c.Dataset.Path = strings.TrimSpace(c.Dataset.Path)
	if c.Dataset.Path == "" {
		if value, ok := os.LookupEnv("ICTAL_DATASET"); ok {
			c.Dataset.Path = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeEvaluation() {
	if c.Evaluation.Workers <= 0 {
		c.Evaluation.Workers = defaultWorkers
	}
	if c.Evaluation.Subsets == nil {
		c.Evaluation.Subsets = DefaultSubsets()
	}
	for i := range c.Evaluation.Subsets {
		s := &c.Evaluation.Subsets[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Tag = strings.ToLower(strings.TrimSpace(s.Tag))
		s.Match = strings.ToLower(strings.TrimSpace(s.Match))
		if s.Match == "" {
			s.Match = MatchContains
		}
		if s.Name == "" {
			s.Name = s.Value
		}
	}
}

func (c *Config) normalizeSegmentation() {
	c.Segmentation.FFprobeBinary = strings.TrimSpace(c.Segmentation.FFprobeBinary)
	if c.Segmentation.FFprobeBinary == "" {
		c.Segmentation.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Segmentation.SequenceSegmentSeconds <= 0 {
		c.Segmentation.SequenceSegmentSeconds = defaultSequenceSegmentSeconds
	}
}

func (c *Config) normalizeTranscripts() {
	if len(c.Transcripts.Symptoms) == 0 {
		c.Transcripts.Symptoms = append([]string(nil), DefaultSymptoms...)
		return
	}
	symptoms := make([]string, 0, len(c.Transcripts.Symptoms))
	seen := make(map[string]struct{}, len(c.Transcripts.Symptoms))
	for _, symptom := range c.Transcripts.Symptoms {
		normalized := strings.ToLower(strings.TrimSpace(symptom))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		symptoms = append(symptoms, normalized)
	}
	c.Transcripts.Symptoms = symptoms
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
