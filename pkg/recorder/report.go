package recorder

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is a yaml sidecar of a finished recording.
type Report struct {
	Session  string    `yaml:"session"`
	Output   string    `yaml:"output"`
	Started  time.Time `yaml:"started"`
	Duration string    `yaml:"duration"`
	Fps      int       `yaml:"fps"`
	Rect     string    `yaml:"rect"`
	Policy   string    `yaml:"policy"`
	Frames   struct {
		Captured uint64 `yaml:"captured"`
		Dropped  uint64 `yaml:"dropped"`
		Encoded  uint64 `yaml:"encoded"`
	} `yaml:"frames"`
	Failure string `yaml:"failure,omitempty"`
}

func reportPath(output string) string { return output + ".yaml" }

func writeReport(s *session, res Result) (string, error) {
	r := Report{
		Session:  res.Session,
		Output:   res.Output,
		Started:  s.startedAt,
		Duration: res.Elapsed.Round(time.Millisecond).String(),
		Fps:      s.fps,
		Rect:     s.rect.String(),
		Policy:   s.opts.Buffer.Policy.String(),
	}
	r.Frames.Captured = res.FramesCaptured
	r.Frames.Dropped = res.FramesDropped
	r.Frames.Encoded = res.FramesEncoded
	if res.Err != nil {
		r.Failure = res.Err.Error()
	}

	data, err := yaml.Marshal(&r)
	if err != nil {
		return "", err
	}
	path := reportPath(res.Output)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadReport loads a report written next to a recording.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
