package backend

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockboard/adapters/excel"
	"stockboard/domain/core"
	"stockboard/domain/dataset"
	"stockboard/internal/analysis"
	"stockboard/internal/errors"
)

// Endpoints lists the routes reported by the home endpoint.
var Endpoints = []string{
	"/upload-csv",
	"/analyze/<token>/prices",
	"/analyze/<token>/metrics",
	"/analyze/<token>/returns",
	"/analyze/<token>/charts",
	"/analyze-meta/<token>/kpis",
	"/analyze-meta/<token>/charts",
	"/analyze-meta/<token>/advanced",
}

func (s *Server) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API OK", "endpoints": Endpoints})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleUpload parses a CSV or Excel upload and stores it under a new token
func (s *Server) handleUpload(c *gin.Context) {
	if limit := s.config.MaxUploadBytes; limit > 0 {
		if c.Request.ContentLength > limit+multipartOverhead {
			s.respondError(c, s.tooLarge(c.Request.ContentLength))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			s.respondError(c, s.tooLarge(0))
			return
		}
		if stderrors.Is(err, http.ErrMissingFile) {
			s.respondError(c, errors.InvalidInput("No file part 'file'"))
			return
		}
		s.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "Failed to read upload"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.respondError(c, errors.InvalidInput("No file selected"))
		return
	}
	if s.config.MaxUploadBytes > 0 && header.Size > s.config.MaxUploadBytes {
		s.respondError(c, s.tooLarge(header.Size))
		return
	}
	if excel.FileType(header.Filename) == "" {
		s.respondError(c, errors.InvalidInput("Only CSV (.csv) and Excel (.xlsx) files are allowed"))
		return
	}

	ctx := c.Request.Context()
	if err := s.parses.Acquire(ctx, 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upload cancelled"})
		return
	}
	frame, err := excel.NewDataReader(header.Filename, excel.DefaultReaderConfig()).ReadFrame(file)
	s.parses.Release(1)
	if err != nil {
		s.logger.Warn("upload %s: %v", header.Filename, err)
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("Failed to read CSV: %v", err)))
		return
	}

	token := s.store.Put(frame)
	res := analysis.Summarize(frame)
	res.Token = token
	s.logger.Info("stored %s as %s (%d rows, can_analyze=%t)", header.Filename, token, frame.Len(), res.Summary.CanAnalyze)
	c.JSON(http.StatusOK, res)
}

// multipartOverhead is the slack allowed on top of MaxUploadBytes for the
// multipart envelope around the file.
const multipartOverhead = 64 << 10

// tooLarge reports an upload over the limit. size is 0 when the body was cut
// off before its length was known.
func (s *Server) tooLarge(size int64) error {
	limitMB := s.config.MaxUploadBytes / (1024 * 1024)
	if size <= 0 {
		return errors.InvalidInput(fmt.Sprintf("File exceeds the %d MB limit", limitMB))
	}
	return errors.InvalidInput(fmt.Sprintf("File size (%.1f MB) exceeds the %d MB limit",
		float64(size)/(1024*1024), limitMB))
}

func (s *Server) handlePrices(c *gin.Context) {
	s.withFrame(c, "Unknown token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.Prices(f)
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	rf := s.config.RiskFreeRate
	if raw := c.Query("rf"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(c, errors.InvalidInput("rf must be a number"))
			return
		}
		rf = v
	}
	s.withFrame(c, "Unknown token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.Metrics(f, rf)
	})
}

func (s *Server) handleReturns(c *gin.Context) {
	s.withFrame(c, "Invalid token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.Returns(f)
	})
}

func (s *Server) handleCharts(c *gin.Context) {
	s.withFrame(c, "Invalid token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.Charts(f)
	})
}

func (s *Server) handleMetaKPIs(c *gin.Context) {
	s.withFrame(c, "Unknown token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.MetaKPIs(f)
	})
}

func (s *Server) handleMetaCharts(c *gin.Context) {
	s.withFrame(c, "Unknown token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.MetaCharts(f)
	})
}

func (s *Server) handleMetaAdvanced(c *gin.Context) {
	s.withFrame(c, "Unknown token", func(f *dataset.Frame) (interface{}, error) {
		return analysis.MetaAdvanced(f)
	})
}

// withFrame resolves the :token parameter and answers with compute's result.
func (s *Server) withFrame(c *gin.Context, unknown string, compute func(*dataset.Frame) (interface{}, error)) {
	token, err := core.ParseToken(c.Param("token"))
	if err != nil {
		s.respondError(c, errors.NotFound(unknown))
		return
	}
	frame, ok := s.store.Get(token)
	if !ok {
		s.respondError(c, errors.NotFound(unknown))
		return
	}
	out, err := compute(frame)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// respondError writes {"error": message} with the status the error maps to.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Cause == nil {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"error": message})
}
