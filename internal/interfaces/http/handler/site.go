package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/interfaces/http/dto"
	"webgen-ai-api/pkg/logger"
)

const (
	indexFile            = "index.html"
	indexNotFoundMessage = "Index file not found"
)

// SiteHandler 落地页与生成站点的静态文件处理器
type SiteHandler struct {
	staticDir   string
	staticIndex string
	baseDir     string
}

// NewSiteHandler 创建静态文件处理器
func NewSiteHandler(cfg *config.Config) *SiteHandler {
	index := cfg.Static.Index
	if index == "" {
		index = indexFile
	}
	return &SiteHandler{
		staticDir:   cfg.Static.Dir,
		staticIndex: index,
		baseDir:     cfg.Generation.BaseDir,
	}
}

// Landing 返回落地页
// @Summary 落地页
// @Tags Site
// @Produce html
// @Router / [get]
func (h *SiteHandler) Landing(c *gin.Context) {
	h.serve(c, filepath.Join(h.staticDir, h.staticIndex), "Landing page not found")
}

// Example 访问已生成的站点。
// 目录请求返回其 index.html；目录内的普通文件（样式、脚本、备份）原样返回；其余一律 404。
// @Summary 访问生成的站点
// @Tags Site
// @Param subdir path string true "生成目录下的相对路径"
// @Router /examples/{subdir} [get]
func (h *SiteHandler) Example(c *gin.Context) {
	rel := path.Clean("/" + c.Param("subdir"))
	target, ok := h.resolve(rel)
	if !ok {
		dto.NotFound(c, indexNotFoundMessage)
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		dto.NotFound(c, indexNotFoundMessage)
		return
	}

	if info.IsDir() {
		// 保证生成页面内的相对资源路径能正确解析
		if rel != "/" && !strings.HasSuffix(c.Request.URL.Path, "/") {
			c.Redirect(http.StatusMovedPermanently, c.Request.URL.Path+"/")
			return
		}
		target = filepath.Join(target, indexFile)
	}

	h.serve(c, target, indexNotFoundMessage)
}

// resolve 把 URL 路径映射到生成目录内的文件系统路径，越界时返回 false
func (h *SiteHandler) resolve(rel string) (string, bool) {
	base, err := filepath.Abs(h.baseDir)
	if err != nil {
		return "", false
	}
	target := filepath.Join(base, filepath.FromSlash(rel))
	within, err := filepath.Rel(base, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

// serve 以 http.ServeContent 返回普通文件；用 ServeContent 而非 ServeFile 以免 /index.html 被重定向
func (h *SiteHandler) serve(c *gin.Context, name, notFound string) {
	f, err := os.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn(c.Request.Context(), "failed to open site file", "file", name, "error", err.Error())
		}
		dto.NotFound(c, notFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		dto.NotFound(c, notFound)
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
