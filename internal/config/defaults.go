package config

const (
	defaultDataDir                = "~/.local/share/ictal/data"
	defaultLogDir                 = "~/.local/share/ictal/logs"
	defaultRunsDir                = "~/.local/share/ictal/runs"
	defaultMinDuration            = 2
	defaultWorkers                = 4
	defaultSegmentSeconds         = 10
	defaultStepSeconds            = 5
	defaultFramesPerSecond        = 2
	defaultBatchSize              = 10
	defaultSequenceSegmentSeconds = 5
	defaultFFprobeBinary          = "ffprobe"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	// MatchContains selects records whose tag contains the subset value.
	MatchContains = "contains"
	// MatchEquals selects records whose tag equals the subset value.
	MatchEquals = "equals"
)

// DefaultSymptoms lists the symptoms with dedicated fine-tuned models.
var DefaultSymptoms = []string{"tonic", "clonic", "versive", "manual_automatisms", "staring"}

// DefaultSubsets returns the adverse-condition subsets reported by default.
func DefaultSubsets() []Subset {
	return []Subset{
		{Name: "All videos"},
		{Name: "720p", Tag: "device_class", Match: MatchContains, Value: "720p"},
		{Name: "Night-vision", Tag: "illumination", Match: MatchContains, Value: "night-vision", IgnoreCase: true},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			RunsDir: defaultRunsDir,
		},
		Filter: Filter{
			MinDuration: defaultMinDuration,
		},
		Evaluation: Evaluation{
			Workers: defaultWorkers,
		},
		Segmentation: Segmentation{
			SegmentSeconds:         defaultSegmentSeconds,
			StepSeconds:            defaultStepSeconds,
			FramesPerSecond:        defaultFramesPerSecond,
			BatchSize:              defaultBatchSize,
			SequenceSegmentSeconds: defaultSequenceSegmentSeconds,
			FFprobeBinary:          defaultFFprobeBinary,
		},
		Transcripts: Transcripts{
			Symptoms: append([]string(nil), DefaultSymptoms...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
