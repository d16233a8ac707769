package iface

import (
	"context"
	"sync"
)

// MockCaptureBoard is a test double for CaptureBoard that records calls and
// lets tests inject hardware flags or a fake PPS fd.
type MockCaptureBoard struct {
	mu       sync.Mutex
	Calls    []string
	HwFlags  []HardwareFlag
	FakePPS  int
	FailNext error
}

func NewMockCaptureBoard(flags ...HardwareFlag) *MockCaptureBoard {
	return &MockCaptureBoard{HwFlags: flags, FakePPS: -1}
}

func (m *MockCaptureBoard) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	return nil
}

func (m *MockCaptureBoard) Setup(ctx context.Context) error   { return m.record("setup") }
func (m *MockCaptureBoard) Start(ctx context.Context) error   { return m.record("start") }
func (m *MockCaptureBoard) Pause(ctx context.Context) error   { return m.record("pause") }
func (m *MockCaptureBoard) Resume(ctx context.Context) error  { return m.record("resume") }
func (m *MockCaptureBoard) Stop(ctx context.Context) error    { return m.record("stop") }
func (m *MockCaptureBoard) Hardware() []HardwareFlag          { return m.HwFlags }
func (m *MockCaptureBoard) PPSFd() int                        { return m.FakePPS }

// MockDiskArray is an in-memory stand-in for DiskArray used by transfer-mode
// tests.
type MockDiskArray struct {
	mu       sync.Mutex
	written  []byte
	dir      DirectoryInfo
	userdir  []byte
	playback [][]byte
}

func NewMockDiskArray() *MockDiskArray {
	return &MockDiskArray{}
}

func (m *MockDiskArray) Open(ctx context.Context) error  { return nil }
func (m *MockDiskArray) Close(ctx context.Context) error { return nil }
func (m *MockDiskArray) SetMode(mode string) error       { return nil }
func (m *MockDiskArray) BindInputChannel(channel int) error  { return nil }
func (m *MockDiskArray) BindOutputChannel(channel int) error { return nil }

func (m *MockDiskArray) Append(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, data...)
	m.dir.Length += uint64(len(data))
	return len(data), nil
}

func (m *MockDiskArray) Record(data []byte) (int, error) {
	return m.Append(data)
}

func (m *MockDiskArray) Stop() error { return nil }

func (m *MockDiskArray) GetDirectory() (DirectoryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir, nil
}

func (m *MockDiskArray) ReadUserDir() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.userdir...), nil
}

func (m *MockDiskArray) WriteUserDir(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userdir = append([]byte(nil), data...)
	return nil
}

func (m *MockDiskArray) Playback(ctx context.Context, out chan<- []byte) error {
	m.mu.Lock()
	chunks := m.playback
	m.mu.Unlock()
	for _, c := range chunks {
		select {
		case out <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	close(out)
	return nil
}

func (m *MockDiskArray) GetPlayBufferStatus() (PlayBufferStatus, error) {
	return PlayBufferStatus{}, nil
}

// Written exposes everything appended/recorded so far, for test assertions.
func (m *MockDiskArray) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.written...)
}

// MockTransport is an in-memory Transport test double backed by a byte
// channel, simulating a loopback connection.
type MockTransport struct {
	mu    sync.Mutex
	buf   chan []byte
	stats TransportStats
}

func NewMockTransport() *MockTransport {
	return &MockTransport{buf: make(chan []byte, 64)}
}

func (m *MockTransport) Dial(ctx context.Context, host string, port int) error   { return nil }
func (m *MockTransport) Listen(ctx context.Context, host string, port int) error { return nil }
func (m *MockTransport) Close() error                                           { return nil }

func (m *MockTransport) Send(buf []byte) (int, error) {
	cp := append([]byte(nil), buf...)
	m.buf <- cp
	m.mu.Lock()
	m.stats.PacketsSent++
	m.mu.Unlock()
	return len(buf), nil
}

func (m *MockTransport) Recv(buf []byte) (int, error) {
	data := <-m.buf
	n := copy(buf, data)
	m.mu.Lock()
	m.stats.PacketsReceived++
	if n < len(data) {
		m.stats.ShortReads++
	}
	m.mu.Unlock()
	return n, nil
}

func (m *MockTransport) Stats() TransportStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
