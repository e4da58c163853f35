package docker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeDockerClient struct {
	t               *testing.T
	imageInspectErr error
	imagePullErr    error
	imagePulled     bool

	createResp container.ContainerCreateCreatedBody
	createErr  error
	startErr   error
	removed    bool
	hostConfig *container.HostConfig
	image      string

	execQueue []*fakeExecCall
	executed  []*fakeExecCall
	execMap   map[string]*fakeExecCall

	killCalls []string
}

type fakeExecCall struct {
	expectCmd []string
	gotCmd    []string

	createErr  error
	attachErr  error
	startErr   error
	inspect    types.ContainerExecInspect
	inspectErr error

	stdout string
	stderr string

	stdin    bytes.Buffer
	conn     *fakeConn
	writeErr error
}

func (f *fakeDockerClient) ImageInspectWithRaw(context.Context, string) (types.ImageInspect, []byte, error) {
	return types.ImageInspect{}, nil, f.imageInspectErr
}

func (f *fakeDockerClient) ImagePull(context.Context, string, types.ImagePullOptions) (io.ReadCloser, error) {
	if f.imagePullErr != nil {
		return nil, f.imagePullErr
	}
	f.imagePulled = true
	return io.NopCloser(strings.NewReader("ok")), nil
}

func (f *fakeDockerClient) ContainerCreate(_ context.Context, conf *container.Config, hostCfg *container.HostConfig, _ *network.NetworkingConfig, _ *specs.Platform, _ string) (container.ContainerCreateCreatedBody, error) {
	f.image = conf.Image
	f.hostConfig = hostCfg
	return f.createResp, f.createErr
}

func (f *fakeDockerClient) ContainerRemove(context.Context, string, types.ContainerRemoveOptions) error {
	f.removed = true
	return nil
}

func (f *fakeDockerClient) ContainerStart(context.Context, string, types.ContainerStartOptions) error {
	return f.startErr
}

func (f *fakeDockerClient) ContainerKill(ctx context.Context, containerID string, signal string) error {
	f.killCalls = append(f.killCalls, signal)
	return nil
}

func (f *fakeDockerClient) ensureExecMap() {
	if f.execMap == nil {
		f.execMap = make(map[string]*fakeExecCall)
	}
}

func (f *fakeDockerClient) fail(format string, args ...any) {
	if f.t != nil {
		f.t.Fatalf(format, args...)
	}
	panic(fmt.Sprintf(format, args...))
}

func (f *fakeDockerClient) nextExec(config types.ExecConfig) (*fakeExecCall, string, error) {
	if len(f.execQueue) == 0 {
		f.fail("unexpected exec create for command %v", config.Cmd)
	}
	call := f.execQueue[0]
	f.execQueue = f.execQueue[1:]
	call.gotCmd = append([]string(nil), config.Cmd...)
	if len(call.expectCmd) > 0 && !reflect.DeepEqual(call.expectCmd, config.Cmd) {
		f.fail("expected cmd %v, got %v", call.expectCmd, config.Cmd)
	}
	f.executed = append(f.executed, call)
	id := fmt.Sprintf("exec-%d", len(f.executed))
	return call, id, call.createErr
}

func (f *fakeDockerClient) ContainerExecCreate(ctx context.Context, container string, config types.ExecConfig) (types.IDResponse, error) {
	call, id, err := f.nextExec(config)
	if err != nil {
		return types.IDResponse{}, err
	}
	f.ensureExecMap()
	f.execMap[id] = call
	return types.IDResponse{ID: id}, nil
}

func (f *fakeDockerClient) ContainerExecAttach(ctx context.Context, execID string, config types.ExecStartCheck) (types.HijackedResponse, error) {
	call := f.execMap[execID]
	if call == nil {
		f.fail("attach called for unknown exec id %s", execID)
	}
	if call.attachErr != nil {
		return types.HijackedResponse{}, call.attachErr
	}
	conn := &fakeConn{buf: &call.stdin, call: call}
	call.conn = conn
	data := muxStreams(call.stdout, call.stderr)
	return types.HijackedResponse{
		Conn:   conn,
		Reader: bufio.NewReader(bytes.NewReader(data)),
	}, nil
}

func (f *fakeDockerClient) ContainerExecStart(ctx context.Context, execID string, config types.ExecStartCheck) error {
	call := f.execMap[execID]
	if call == nil {
		f.fail("start called for unknown exec id %s", execID)
	}
	return call.startErr
}

func (f *fakeDockerClient) ContainerExecInspect(ctx context.Context, execID string) (types.ContainerExecInspect, error) {
	call := f.execMap[execID]
	if call == nil {
		f.fail("inspect called for unknown exec id %s", execID)
	}
	if call.inspectErr != nil {
		return types.ContainerExecInspect{}, call.inspectErr
	}
	return call.inspect, nil
}

type fakeConn struct {
	buf        *bytes.Buffer
	closed     bool
	closeWrite bool
	call       *fakeExecCall
}

func (c *fakeConn) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.call != nil && c.call.writeErr != nil {
		return 0, c.call.writeErr
	}
	if c.buf != nil {
		return c.buf.Write(p)
	}
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeAddr string

func (a fakeAddr) Network() string { return string(a) }
func (a fakeAddr) String() string  { return string(a) }

func (c *fakeConn) LocalAddr() net.Addr  { return fakeAddr("local") }
func (c *fakeConn) RemoteAddr() net.Addr { return fakeAddr("remote") }
func (c *fakeConn) SetDeadline(time.Time) error {
	return nil
}
func (c *fakeConn) SetReadDeadline(time.Time) error {
	return nil
}
func (c *fakeConn) SetWriteDeadline(time.Time) error {
	return nil
}
func (c *fakeConn) CloseWrite() error {
	c.closeWrite = true
	return nil
}

func muxStreams(stdout, stderr string) []byte {
	var buf bytes.Buffer
	if stdout != "" {
		buf.Write(singleStream(1, stdout))
	}
	if stderr != "" {
		buf.Write(singleStream(2, stderr))
	}
	return buf.Bytes()
}

func singleStream(stream byte, payload string) []byte {
	data := []byte(payload)
	header := make([]byte, 8)
	header[0] = stream
	binary.BigEndian.PutUint32(header[4:], uint32(len(data)))
	return append(header, data...)
}

// copySteps are the three execs that place a source file in the container
func copySteps(file string) []*fakeExecCall {
	return []*fakeExecCall{
		{expectCmd: []string{"/bin/sh", "-c", "mkdir -p '/workspace'"}},
		{expectCmd: []string{"/bin/sh", "-c", "cat > '/workspace/" + file + "'"}},
		{expectCmd: []string{"/bin/sh", "-c", "chmod 600 '/workspace/" + file + "'"}},
	}
}
