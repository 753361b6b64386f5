package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "webgen-ai-api/pkg/errors"
	"webgen-ai-api/pkg/logger"
	"webgen-ai-api/pkg/metrics"
	"webgen-ai-api/pkg/tracer"
)

const (
	defaultDirPerm  fs.FileMode = 0o755
	defaultFilePerm fs.FileMode = 0o644

	modeIsolated = "isolated"
	modeDirect   = "direct"
)

// Options 单次落盘选项
type Options struct {
	// Isolate 为 true 时在 baseDir 下新建随机命名的子目录并写入其中
	Isolate bool
}

// Backup 一次覆盖前的版本备份
type Backup struct {
	Original string `json:"original"`
	Path     string `json:"path"`
}

// Result 落盘结果
type Result struct {
	// Dir 实际写入的目录（baseDir 或新建的子目录）
	Dir     string   `json:"dir"`
	Written []string `json:"written"`
	Backups []Backup `json:"backups,omitempty"`
}

// Materializer 负责把 FileSet 写入磁盘。
// 覆盖已存在文件前总会先把旧文件重命名为 <name>.v<k>，旧内容不会丢失。
// 批量写入不是事务性的：中途失败时，之前写入的文件保留在磁盘上。
type Materializer struct {
	newID    func() string
	dirPerm  fs.FileMode
	filePerm fs.FileMode
}

// Option Materializer 构造选项
type Option func(*Materializer)

// WithIDGenerator 替换隔离子目录的命名函数
func WithIDGenerator(fn func() string) Option {
	return func(m *Materializer) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithFileMode 设置生成文件的权限
func WithFileMode(perm fs.FileMode) Option {
	return func(m *Materializer) {
		m.filePerm = perm
	}
}

// New 创建 Materializer
func New(opts ...Option) *Materializer {
	m := &Materializer{
		newID:    func() string { return uuid.New().String() },
		dirPerm:  defaultDirPerm,
		filePerm: defaultFilePerm,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize 解析模型输出并写入 baseDir。
// 解析失败返回 *MalformedPayloadError，此时不创建目录也不写任何文件。
func (m *Materializer) Materialize(ctx context.Context, payload, baseDir string, opts Options) (*Result, error) {
	metrics.PayloadBytes.Observe(float64(len(payload)))

	files, err := ParseFileSet(payload)
	if err != nil {
		metrics.MaterializeTotal.WithLabelValues(modeLabel(opts), "malformed").Inc()
		logger.Warn(ctx, "assistant payload rejected", "reason", err.Error(), "payload_bytes", len(payload))
		return nil, err
	}
	return m.Write(ctx, files, baseDir, opts)
}

// Write 将已校验的 FileSet 按顺序写入磁盘
func (m *Materializer) Write(ctx context.Context, files FileSet, baseDir string, opts Options) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "materialize")
	span.SetAttributes(
		attribute.String("materialize.mode", modeLabel(opts)),
		attribute.Int("materialize.files", len(files)),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.MaterializeTotal.WithLabelValues(modeLabel(opts), status).Inc()
		span.End()
	}()

	dir, err := m.prepareDir(baseDir, opts.Isolate)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithContext(ctx, logger.WorkspaceKey, dir)

	res = &Result{Dir: dir, Written: make([]string, 0, len(files))}
	for _, f := range files {
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))

		backup, err := m.writeFile(dest, f.Content)
		if backup != "" {
			res.Backups = append(res.Backups, Backup{Original: dest, Path: backup})
			metrics.BackupsCreated.Inc()
		}
		if err != nil {
			// 已写入的文件不回滚，调用方通过 res 了解进度
			logger.Error(ctx, "materialize stopped on write failure", err,
				"file", f.Name, "written", len(res.Written))
			return res, err
		}
		res.Written = append(res.Written, dest)
		metrics.FilesWritten.Inc()
	}

	logger.Info(ctx, "files materialized",
		"files", len(res.Written),
		"backups", len(res.Backups),
		"mode", modeLabel(opts),
	)
	return res, nil
}

// prepareDir 确保 baseDir 存在；隔离模式下再创建一个全新的随机子目录
func (m *Materializer) prepareDir(baseDir string, isolate bool) (string, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, m.dirPerm); err != nil {
		return "", fsError("create base directory", baseDir, err)
	}
	if !isolate {
		return baseDir, nil
	}

	dir := filepath.Join(baseDir, m.newID())
	// Mkdir 而不是 MkdirAll：目录已存在时必须失败，绝不复用别人的工作区
	if err := os.Mkdir(dir, m.dirPerm); err != nil {
		return "", fsError("create isolated directory", dir, err)
	}
	metrics.WorkspacesCreated.Inc()
	return dir, nil
}

// writeFile 备份已存在的 dest 后写入 content，返回备份路径（无备份时为空）
func (m *Materializer) writeFile(dest, content string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), m.dirPerm); err != nil {
		return "", fsError("create parent directory", filepath.Dir(dest), err)
	}

	backup, err := backupExisting(dest)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(dest, []byte(content), m.filePerm); err != nil {
		return backup, fsError("write file", dest, err)
	}
	return backup, nil
}

// backupExisting 若 dest 已存在，重命名为最小未占用的 <dest>.v<k>（k >= 1）
func backupExisting(dest string) (string, error) {
	info, err := os.Lstat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fsError("stat", dest, err)
	}
	if info.IsDir() {
		return "", fsError("overwrite", dest, errors.New("destination is a directory"))
	}

	for k := 1; ; k++ {
		candidate := VersionedName(dest, k)
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.Rename(dest, candidate); err != nil {
				return "", fsError("backup", dest, err)
			}
			return candidate, nil
		}
		if err != nil {
			return "", fsError("stat", candidate, err)
		}
	}
}

// VersionedName 返回 name 的第 k 个备份名
func VersionedName(name string, k int) string {
	return fmt.Sprintf("%s.v%d", name, k)
}

func fsError(op, path string, err error) error {
	return apperrors.Wrap(&fs.PathError{Op: op, Path: path, Err: err}, apperrors.CodeFilesystem, "filesystem error")
}

func modeLabel(opts Options) string {
	if opts.Isolate {
		return modeIsolated
	}
	return modeDirect
}
