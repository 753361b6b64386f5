// Package materialize 将模型返回的 文件名 -> 文件内容 JSON 对象写入磁盘
package materialize

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	apperrors "webgen-ai-api/pkg/errors"
)

// Entry 单个待写入的文件
type Entry struct {
	Name    string
	Content string
}

// FileSet 按 JSON 键声明顺序排列的文件集合
type FileSet []Entry

// Names 返回所有文件名
func (fs FileSet) Names() []string {
	names := make([]string, 0, len(fs))
	for _, e := range fs {
		names = append(names, e.Name)
	}
	return names
}

// MalformedPayloadError 模型输出无法解析为扁平的字符串对象
type MalformedPayloadError struct {
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return "malformed payload: " + e.Reason
}

// Is 使 errors.Is(err, apperrors.ErrMalformedPayload) 成立
func (e *MalformedPayloadError) Is(target error) bool {
	return target == apperrors.ErrMalformedPayload
}

func malformed(format string, args ...any) *MalformedPayloadError {
	return &MalformedPayloadError{Reason: fmt.Sprintf(format, args...)}
}

// ParseFileSet 校验并解析模型输出。
// 成功时返回有序 FileSet；任何不合规（非 JSON、非对象、非字符串值、越界文件名、
// 非法 UTF-8）都返回 *MalformedPayloadError，且不会产生任何写入。
// 外层包裹的 markdown 围栏同样视为不合规。
func ParseFileSet(payload string) (FileSet, error) {
	raw := strings.TrimSpace(payload)
	if raw == "" {
		return nil, malformed("payload is empty")
	}
	if !utf8.ValidString(raw) {
		return nil, malformed("payload is not valid UTF-8")
	}
	if !gjson.Valid(raw) {
		return nil, malformed("payload is not valid JSON")
	}

	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil, malformed("payload must be a JSON object, got %s", describe(root))
	}

	var (
		files    FileSet
		index    = make(map[string]int)
		parseErr *MalformedPayloadError
	)
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if value.Type != gjson.String {
			parseErr = malformed("value of %q must be a string, got %s", name, describe(value))
			return false
		}
		if err := validateName(name); err != nil {
			parseErr = err
			return false
		}
		// 重复键：保留首次出现的位置，内容以最后一次为准
		if i, ok := index[name]; ok {
			files[i].Content = value.String()
			return true
		}
		index[name] = len(files)
		files = append(files, Entry{Name: name, Content: value.String()})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return files, nil
}

// validateName 拒绝空名、绝对路径以及清理后会逃出目标目录的文件名
func validateName(name string) *MalformedPayloadError {
	if strings.TrimSpace(name) == "" {
		return malformed("filename must not be empty")
	}
	if strings.ContainsRune(name, 0) {
		return malformed("filename %q contains a NUL byte", name)
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`) {
		return malformed("filename %q names a directory", name)
	}

	native := filepath.FromSlash(name)
	if filepath.IsAbs(native) || strings.HasPrefix(name, "/") || filepath.VolumeName(native) != "" {
		return malformed("filename %q must be relative", name)
	}

	clean := filepath.Clean(native)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return malformed("filename %q escapes the target directory", name)
	}
	return nil
}

func describe(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	case r.IsBool():
		return "boolean"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		return r.Type.String()
	}
}
