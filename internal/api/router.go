// internal/api/router.go
package api

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payroll-pain001/internal/api/handlers"
	"github.com/ginjaninja78/payroll-pain001/internal/api/middleware"
	"github.com/ginjaninja78/payroll-pain001/internal/api/responses"
	"github.com/ginjaninja78/payroll-pain001/web"
)

// NewRouter wires the upload page, the conversion endpoints and the health
// check onto a gin engine. maxUploadBytes caps the body of POST /upload; zero
// disables the cap.
func NewRouter(h *handlers.PayrollHandler, logger *zap.Logger, maxUploadBytes int64) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	index, err := fs.ReadFile(static, "index.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	if maxUploadBytes > 0 {
		router.MaxMultipartMemory = maxUploadBytes
	}
	router.Use(middleware.Recovery(logger), middleware.RequestLogger(logger), middleware.CORS())

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	router.StaticFS("/static", http.FS(static))

	upload := []gin.HandlerFunc{h.HandleUpload}
	if maxUploadBytes > 0 {
		upload = append([]gin.HandlerFunc{middleware.MaxBodySize(maxUploadBytes)}, upload...)
	}
	router.POST("/upload", upload...)
	router.GET("/download-sample", h.HandleDownloadSample)
	router.GET("/health", h.HandleHealth)

	router.NoRoute(func(c *gin.Context) {
		responses.Error(c, http.StatusNotFound, "Not found.")
	})

	return router, nil
}
