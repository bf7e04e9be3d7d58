package metrics

import "context"

// noopMeter 指标关闭时的空实现
type noopMeter struct{}

func (*noopMeter) Counter(string, string) (Counter, error)     { return noopCounter{}, nil }
func (*noopMeter) Gauge(string, string) (Gauge, error)         { return noopGauge{}, nil }
func (*noopMeter) Histogram(string, string) (Histogram, error) { return noopHistogram{}, nil }
func (*noopMeter) Shutdown(context.Context) error              { return nil }

type noopCounter struct{}

func (noopCounter) Inc(context.Context, ...Label)          {}
func (noopCounter) Add(context.Context, float64, ...Label) {}

type noopGauge struct{}

func (noopGauge) Set(context.Context, float64, ...Label) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...Label) {}

// Noop 返回空实现 Meter，适用于测试或未启用指标的场景
func Noop() Meter {
	return &noopMeter{}
}
