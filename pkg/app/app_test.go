package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pijn/portmanager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeServer struct {
	rec      *recorder
	startErr error
}

func (s *fakeServer) Start() error {
	s.rec.add("start")
	return s.startErr
}

func (s *fakeServer) Stop() error {
	s.rec.add("stop")
	return nil
}

func newTestApp() *BaseApp {
	return NewBaseApp(WithLogger(logger.NewNoop()), WithName("test"), WithStopTimeout(time.Second))
}

func TestBaseApp_ScheduleShutdown(t *testing.T) {
	rec := &recorder{}
	a := newTestApp()
	a.AppendServer(&fakeServer{rec: rec})
	a.AppendCloser(
		CloserFunc(func() error { rec.add("close-1"); return nil }),
		CloserFunc(func() error { rec.add("close-2"); return errors.New("ignored") }),
	)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.Eventually(t, func() bool {
		return len(rec.list()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.True(t, a.ScheduleShutdown(20*time.Millisecond))
	assert.False(t, a.ScheduleShutdown(time.Millisecond))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("application did not stop")
	}

	assert.Equal(t, []string{"start", "stop", "close-2", "close-1"}, rec.list())
	assert.Error(t, a.Context().Err())
	assert.ErrorIs(t, a.Run(), ErrAppAlreadyRunning)
}

func TestBaseApp_ScheduleShutdownDelay(t *testing.T) {
	a := newTestApp()

	start := time.Now()
	a.ScheduleShutdown(50 * time.Millisecond)
	<-a.Context().Done()
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestBaseApp_StartFailure(t *testing.T) {
	rec := &recorder{}
	a := newTestApp()
	a.AppendServer(&fakeServer{rec: rec, startErr: errors.New("bind failed")})

	err := a.Run()
	assert.EqualError(t, err, "bind failed")
	assert.Equal(t, []string{"start", "stop"}, rec.list())
}

func TestBaseApp_ShutdownIdempotent(t *testing.T) {
	calls := 0
	a := newTestApp()
	a.AppendCloser(CloserFunc(func() error { calls++; return nil }))

	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())
	assert.Equal(t, 1, calls)
}

// infoCapture 记录 Info 日志，其余输出丢弃
type infoCapture struct {
	logger.Logger
	mu   sync.Mutex
	msgs map[string][]interface{}
}

func (c *infoCapture) Info(msg string, keysAndValues ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs[msg] = keysAndValues
}

func (c *infoCapture) Named(string) logger.Logger {
	return c
}

func TestBaseApp_StartupLogCarriesVersion(t *testing.T) {
	capture := &infoCapture{Logger: logger.NewNoop(), msgs: map[string][]interface{}{}}
	a := NewBaseApp(WithLogger(capture), WithName("portmanager-test"), WithStopTimeout(time.Second))
	a.AppendServer(&fakeServer{rec: &recorder{}, startErr: errors.New("bind failed")})

	require.Error(t, a.Run())

	capture.mu.Lock()
	kv := capture.msgs["application starting"]
	capture.mu.Unlock()
	require.NotEmpty(t, kv)

	fields := map[interface{}]interface{}{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	assert.Equal(t, AppName, fields["app"])
	assert.Equal(t, Version, fields["version"])
	assert.Equal(t, "portmanager-test", fields["name"])
	assert.Equal(t, a.ID(), fields["id"])
	assert.Contains(t, fields, "go_version")
}
