package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	n := NoopNodeHooks{}
	n.OnRunStart(ctx, "VPypeProcessor")
	n.OnRunComplete(ctx, "VPypeProcessor", false, time.Second, nil)

	p := NoopProcessHooks{}
	p.OnExecStart(ctx, "vpype", []string{"read", "in.svg", "write", "out.svg"})
	p.OnExecComplete(ctx, "vpype", 0, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "result", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/nodes/VPypeProcessor/run")
	h.OnResponse(ctx, "POST", "/nodes/VPypeProcessor/run", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Node().(NoopNodeHooks); !ok {
		t.Error("Node() should return NoopNodeHooks by default")
	}
	if _, ok := Process().(NoopProcessHooks); !ok {
		t.Error("Process() should return NoopProcessHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customNode := &testNodeHooks{}
	SetNodeHooks(customNode)
	if Node() != customNode {
		t.Error("SetNodeHooks should set custom hooks")
	}

	customProcess := &testProcessHooks{}
	SetProcessHooks(customProcess)
	if Process() != customProcess {
		t.Error("SetProcessHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Node().(NoopNodeHooks); !ok {
		t.Error("Reset() should restore NoopNodeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testProcessHooks{}
	SetProcessHooks(custom)
	SetProcessHooks(nil)

	if Process() != custom {
		t.Error("SetProcessHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	h.Install()

	ctx := context.Background()
	Node().OnRunStart(ctx, "VPypeGCodeGenerator")
	Process().OnExecComplete(ctx, "vpype", 2, time.Millisecond, errors.New("boom"))
	Cache().OnCacheHit(ctx, "result")
	HTTP().OnResponse(ctx, "GET", "/nodes", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"node start", "VPypeGCodeGenerator", "process exit", "cache hit", "response"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// Test implementations
type testNodeHooks struct{ NoopNodeHooks }
type testProcessHooks struct{ NoopProcessHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
