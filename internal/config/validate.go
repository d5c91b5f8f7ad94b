package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSubsets(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateTranscripts(); err != nil {
		return err
	}
	return c.validateLogging()
}

var knownTags = map[string]struct{}{
	"":             {},
	"device_class": {},
	"illumination": {},
}

func (c *Config) validateSubsets() error {
	seen := make(map[string]struct{}, len(c.Evaluation.Subsets))
	for i, s := range c.Evaluation.Subsets {
		if s.Name == "" {
			return fmt.Errorf("evaluation.subsets[%d].name must be set", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("evaluation.subsets[%d].name %q is duplicated", i, s.Name)
		}
		seen[s.Name] = struct{}{}
		if _, ok := knownTags[s.Tag]; !ok {
			return fmt.Errorf("evaluation.subsets[%d].tag %q must be device_class or illumination", i, s.Tag)
		}
		if s.Match != MatchContains && s.Match != MatchEquals {
			return fmt.Errorf("evaluation.subsets[%d].match %q must be contains or equals", i, s.Match)
		}
		if s.Tag != "" && strings.TrimSpace(s.Value) == "" {
			return fmt.Errorf("evaluation.subsets[%d].value must be set when tag is set", i)
		}
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	seg := c.Segmentation
	if seg.SegmentSeconds <= 0 {
		return errors.New("segmentation.segment_seconds must be positive")
	}
	if seg.StepSeconds <= 0 {
		return errors.New("segmentation.step_seconds must be positive")
	}
	if seg.FramesPerSecond <= 0 {
		return errors.New("segmentation.frames_per_second must be positive")
	}
	if seg.BatchSize <= 0 {
		return errors.New("segmentation.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateTranscripts() error {
	if len(c.Transcripts.Symptoms) == 0 {
		return errors.New("transcripts.symptoms must include at least one symptom")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
}
