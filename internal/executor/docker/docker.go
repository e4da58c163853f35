// Package docker runs submissions in throwaway local containers, one per run,
// with networking disabled and memory, CPU and wall time capped.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	specs "github.com/opencontainers/image-spec/specs-go/v1"

	"zia/internal/executor"
	"zia/internal/models"
)

const workDir = "/workspace"

var ErrDockerUnavailable = errors.New("docker daemon unreachable")

func init() {
	executor.RegisterExecutor("docker", func(settings executor.Settings) (executor.Executor, error) {
		return New(Limits{
			WallTime: settings.WallTime,
			MemoryB:  settings.MemoryBytes,
			NanoCPUs: settings.NanoCPUs,
		})
	})
}

type Limits struct {
	WallTime time.Duration
	MemoryB  int64
	NanoCPUs int64
}

type dockerClient interface {
	ImageInspectWithRaw(ctx context.Context, image string) (types.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.ContainerCreateCreatedBody, error)
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerKill(ctx context.Context, containerID string, signal string) error
	ContainerExecCreate(ctx context.Context, container string, config types.ExecConfig) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config types.ExecStartCheck) (types.HijackedResponse, error)
	ContainerExecStart(ctx context.Context, execID string, config types.ExecStartCheck) error
	ContainerExecInspect(ctx context.Context, execID string) (types.ContainerExecInspect, error)
}

var newDockerClient = func() (dockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// Executor is the docker execution backend
type Executor struct {
	cli    dockerClient
	limits Limits
	now    func() time.Time
}

func New(limits Limits) (*Executor, error) {
	cli, err := newDockerClient()
	if err != nil {
		return nil, translateDockerErr(err)
	}
	return newWithClient(cli, limits), nil
}

func newWithClient(cli dockerClient, limits Limits) *Executor {
	if limits.WallTime <= 0 {
		limits.WallTime = 10 * time.Second
	}
	if limits.MemoryB == 0 {
		limits.MemoryB = 512 * 1024 * 1024
	}
	if limits.NanoCPUs == 0 {
		limits.NanoCPUs = 1_000_000_000
	}
	return &Executor{cli: cli, limits: limits, now: time.Now}
}

func (e *Executor) Name() string {
	return "docker"
}

// Execute copies source into a fresh container, compiles it if the language
// needs it, and runs it. A non-zero compile exit fills CompileOutput.
func (e *Executor) Execute(ctx context.Context, lang models.Language, source string) (*executor.Result, error) {
	spec, err := executor.SpecFor(lang)
	if err != nil {
		return nil, err
	}

	if err := e.ensureImage(ctx, spec.Image); err != nil {
		return nil, e.wrap("image unavailable", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.limits.WallTime)
	defer cancel()

	cid, err := e.startContainer(runCtx, spec.Image)
	if err != nil {
		return nil, e.wrap("failed to start container", err)
	}
	defer func() {
		_ = e.cli.ContainerRemove(context.Background(), cid, types.ContainerRemoveOptions{Force: true})
	}()

	if err := e.copyFile(runCtx, cid, path.Join(workDir, spec.FileName), []byte(source), 0o600); err != nil {
		_ = e.cli.ContainerKill(context.Background(), cid, "SIGKILL")
		return nil, e.wrap("failed to copy source", err)
	}

	started := e.now()
	result := &executor.Result{Memory: "N/A"}

	if len(spec.Compile) > 0 {
		stdout, stderr, exit, err := e.run(runCtx, cid, spec.Compile)
		if err != nil {
			return nil, e.timeoutOr(runCtx, "compile step failed", err)
		}
		if exit != 0 {
			result.CompileOutput = joinStreams(stdout, stderr)
			result.Status = fmt.Sprintf("Exit Code: %d", exit)
			result.Time = elapsedSeconds(e.now().Sub(started))
			return result, nil
		}
	}

	stdout, stderr, exit, err := e.run(runCtx, cid, spec.Run)
	if err != nil {
		return nil, e.timeoutOr(runCtx, "run step failed", err)
	}
	result.Stdout = stdout
	result.Stderr = stderr
	result.Time = elapsedSeconds(e.now().Sub(started))
	if exit == 0 {
		result.Status = "Success"
	} else {
		result.Status = fmt.Sprintf("Exit Code: %d", exit)
	}
	return result, nil
}

func (e *Executor) startContainer(ctx context.Context, image string) (string, error) {
	hostCfg := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:   e.limits.MemoryB,
			NanoCPUs: e.limits.NanoCPUs,
		},
		SecurityOpt: []string{"no-new-privileges"},
	}

	conf := &container.Config{
		Image:      image,
		Cmd:        []string{"/bin/sh", "-c", "sleep infinity"},
		Tty:        false,
		WorkingDir: workDir,
		Env:        []string{"PYTHONDONTWRITEBYTECODE=1"},
	}

	created, err := e.cli.ContainerCreate(ctx, conf, hostCfg, nil, nil, "")
	if err != nil {
		return "", translateDockerErr(err)
	}
	if err := e.cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		_ = e.cli.ContainerRemove(context.Background(), created.ID, types.ContainerRemoveOptions{Force: true})
		return "", translateDockerErr(err)
	}
	return created.ID, nil
}

// run executes cmd and collects both streams
func (e *Executor) run(ctx context.Context, cid string, cmd []string) (stdout, stderr string, exit int, err error) {
	execID, attach, err := e.execStart(ctx, cid, cmd)
	if err != nil {
		return "", "", -1, err
	}
	var outBuf, errBuf strings.Builder
	_, _ = stdcopy.StdCopy(&outBuf, &errBuf, attach.Reader)
	attach.Close()

	inspect, err := e.cli.ContainerExecInspect(ctx, execID)
	if err != nil {
		return "", "", -1, translateDockerErr(err)
	}
	return outBuf.String(), errBuf.String(), inspect.ExitCode, nil
}

func (e *Executor) ensureImage(ctx context.Context, image string) error {
	_, _, err := e.cli.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return nil
	}
	if client.IsErrNotFound(err) {
		pullCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reader, pullErr := e.cli.ImagePull(pullCtx, image, types.ImagePullOptions{})
		if pullErr != nil {
			return translateDockerErr(pullErr)
		}
		defer reader.Close()
		_, _ = io.Copy(io.Discard, reader)
		return nil
	}
	return translateDockerErr(err)
}

func (e *Executor) execStart(ctx context.Context, containerID string, cmd []string) (string, types.HijackedResponse, error) {
	execResp, err := e.cli.ContainerExecCreate(ctx, containerID, types.ExecConfig{
		Cmd:          cmd,
		WorkingDir:   workDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", types.HijackedResponse{}, translateDockerErr(err)
	}
	attach, err := e.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return "", types.HijackedResponse{}, translateDockerErr(err)
	}
	if err := e.cli.ContainerExecStart(ctx, execResp.ID, types.ExecStartCheck{}); err != nil {
		attach.Close()
		return "", types.HijackedResponse{}, translateDockerErr(err)
	}
	return execResp.ID, attach, nil
}

// copyFile streams content through `cat` since the container has no network and no bind mounts
func (e *Executor) copyFile(ctx context.Context, cid, absPath string, content []byte, mode int64) error {
	if absPath == "" || !strings.HasPrefix(absPath, "/") {
		return fmt.Errorf("invalid path %q", absPath)
	}
	if err := e.shell(ctx, cid, fmt.Sprintf("mkdir -p %s", shellQuote(path.Dir(absPath)))); err != nil {
		return err
	}
	if err := e.execWithInput(ctx, cid, fmt.Sprintf("cat > %s", shellQuote(absPath)), content); err != nil {
		return err
	}
	return e.shell(ctx, cid, fmt.Sprintf("chmod %o %s", mode&0o777, shellQuote(absPath)))
}

func (e *Executor) shell(ctx context.Context, cid, cmd string) error {
	_, _, exit, err := e.run(ctx, cid, []string{"/bin/sh", "-c", cmd})
	if err != nil {
		return err
	}
	if exit != 0 {
		return fmt.Errorf("command failed (%s) exit=%d", cmd, exit)
	}
	return nil
}

func (e *Executor) execWithInput(ctx context.Context, cid, command string, payload []byte) error {
	execResp, err := e.cli.ContainerExecCreate(ctx, cid, types.ExecConfig{
		Cmd:          []string{"/bin/sh", "-c", command},
		WorkingDir:   workDir,
		AttachStdout: true,
		AttachStderr: true,
		AttachStdin:  true,
	})
	if err != nil {
		return err
	}
	attach, err := e.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return err
	}
	defer attach.Close()
	if err := e.cli.ContainerExecStart(ctx, execResp.ID, types.ExecStartCheck{}); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := attach.Conn.Write(payload); err != nil {
			return err
		}
	}
	if closer, ok := attach.Conn.(interface{ CloseWrite() error }); ok {
		_ = closer.CloseWrite()
	}
	_, _ = stdcopy.StdCopy(io.Discard, io.Discard, attach.Reader)
	inspect, err := e.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return err
	}
	if inspect.ExitCode != 0 {
		return fmt.Errorf("write failed (%s) exit=%d", command, inspect.ExitCode)
	}
	return nil
}

func (e *Executor) wrap(message string, err error) error {
	return &executor.ExecutionError{Backend: e.Name(), Message: message, Err: err}
}

func (e *Executor) timeoutOr(ctx context.Context, message string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return e.wrap(fmt.Sprintf("time limit of %s exceeded", e.limits.WallTime), err)
	}
	return e.wrap(message, err)
}

// WarmImages pulls every language image so the first run is not slow
func (e *Executor) WarmImages(ctx context.Context) error {
	for _, lang := range []models.Language{models.LangCPP, models.LangJava, models.LangPython} {
		spec, err := executor.SpecFor(lang)
		if err != nil {
			return err
		}
		if err := e.ensureImage(ctx, spec.Image); err != nil {
			return fmt.Errorf("warm %s: %w", lang, err)
		}
	}
	return nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

func joinStreams(stdout, stderr string) string {
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}

func elapsedSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}

func translateDockerErr(err error) error {
	if err == nil {
		return nil
	}
	if client.IsErrConnectionFailed(err) {
		return ErrDockerUnavailable
	}
	return err
}
