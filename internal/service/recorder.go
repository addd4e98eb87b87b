package service

// Recorder : доменные счётчики (реализуется metrics.Metrics)
type Recorder interface {
	Payment(outcome string)
	Capability(outcome string)
	Resolution(outcome string)
}

type NoopRecorder struct{}

func (NoopRecorder) Payment(string) {}

func (NoopRecorder) Capability(string) {}

func (NoopRecorder) Resolution(string) {}
