package cache

import (
	"fmt"
	"testing"
)

func TestCodeFilter(t *testing.T) {
	f := NewCodeFilter(1000, 0.01)

	f.Add("abc123")
	f.Add("my-link")

	if !f.MightExist("abc123") {
		t.Error("added code reported as absent")
	}
	if !f.MightExist("my-link") {
		t.Error("added code reported as absent")
	}
}

func TestCodeFilter_FalsePositiveRate(t *testing.T) {
	f := NewCodeFilter(10000, 0.01)
	for i := 0; i < 10000; i++ {
		f.Add(fmt.Sprintf("code-%d", i))
	}

	// 没加入过的短码,误判率应该在配置值附近(给 3 倍余量)。
	falsePositives := 0
	const probes = 10000
	for i := 0; i < probes; i++ {
		if f.MightExist(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}
	if rate := float64(falsePositives) / probes; rate > 0.03 {
		t.Fatalf("false positive rate too high: %.4f", rate)
	}
}

func TestCodeFilter_ConcurrentAccess(t *testing.T) {
	f := NewCodeFilter(1000, 0.01)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			f.Add(fmt.Sprintf("w-%d", i))
		}
	}()
	for i := 0; i < 1000; i++ {
		f.MightExist(fmt.Sprintf("r-%d", i))
	}
	<-done
}
