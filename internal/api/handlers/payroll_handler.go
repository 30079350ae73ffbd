// internal/api/handlers/payroll_handler.go
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payroll-pain001/internal/api/responses"
	"github.com/ginjaninja78/payroll-pain001/internal/converter"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
	"github.com/ginjaninja78/payroll-pain001/internal/validation"
	"github.com/ginjaninja78/payroll-pain001/internal/xlsxparser"
	"github.com/ginjaninja78/payroll-pain001/pkg/utils"
)

const (
	// SampleFileName is the attachment name of the template spreadsheet.
	SampleFileName = "sample_excel.xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xmlContentType  = "application/xml; charset=utf-8"
)

// Options configures a PayrollHandler.
type Options struct {
	// SampleFile is served by DownloadSample when it exists.
	SampleFile string

	// OutputFileName is the attachment name of the generated document.
	OutputFileName string
}

// PayrollHandler serves the upload and download endpoints.
type PayrollHandler struct {
	converter Converter
	store     *utils.TempStore
	options   Options
	logger    *zap.Logger
}

// NewPayrollHandler creates the handler.
func NewPayrollHandler(conv Converter, store *utils.TempStore, options Options, logger *zap.Logger) *PayrollHandler {
	if options.OutputFileName == "" {
		options.OutputFileName = "output.xml"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollHandler{
		converter: conv,
		store:     store,
		options:   options,
		logger:    logger,
	}
}

// HandleUpload converts an uploaded payroll spreadsheet and returns the
// pain.001 document as an attachment.
func (h *PayrollHandler) HandleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			responses.Error(c, http.StatusRequestEntityTooLarge, "File too large.")
			return
		}
		responses.Error(c, http.StatusBadRequest, "No file uploaded.")
		return
	}

	meta := types.BatchMetadata{
		MessageID:              c.PostForm("msg_id"),
		PaymentInfoID:          c.PostForm("PmtInfId"),
		RequestedExecutionDate: c.PostForm("ReqdExctnDt"),
		RemittanceType:         c.PostForm("type"),
	}
	if missing := missingFields(meta); len(missing) > 0 {
		responses.Error(c, http.StatusBadRequest, "Missing batch metadata.", missing...)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, meta, fmt.Errorf("%w: %v", converter.ErrUnreadableInput, err))
		return
	}
	defer file.Close()

	path, err := h.store.Save(file, filepath.Ext(fileHeader.Filename))
	if err != nil {
		h.fail(c, meta, fmt.Errorf("%w: %v", converter.ErrDelivery, err))
		return
	}
	defer func() {
		if err := h.store.Release(path); err != nil {
			h.logger.Warn("failed to remove upload",
				zap.String("error_kind", converter.Kind(converter.ErrDelivery)),
				zap.Error(err),
			)
		}
	}()

	result, err := h.converter.ConvertFile(path, meta)
	if err != nil {
		h.fail(c, meta, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.options.OutputFileName))
	c.Header("X-Unresolved-Bank-Codes", strconv.Itoa(result.Stats.UnresolvedBankCodes))
	c.Data(http.StatusOK, xmlContentType, result.Document)
}

// HandleDownloadSample serves the template spreadsheet. When the configured
// file is absent a template is generated.
func (h *PayrollHandler) HandleDownloadSample(c *gin.Context) {
	if h.options.SampleFile != "" && utils.FileExists(h.options.SampleFile) {
		c.FileAttachment(h.options.SampleFile, SampleFileName)
		return
	}

	var buf bytes.Buffer
	if err := xlsxparser.WriteSample(&buf); err != nil {
		h.logger.Error("failed to generate sample", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Error generating the sample file.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", SampleFileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// HandleHealth reports liveness.
func (h *PayrollHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// fail logs err with its kind and answers with a generic 500.
func (h *PayrollHandler) fail(c *gin.Context, meta types.BatchMetadata, err error) {
	h.logger.Error("conversion failed",
		zap.String("pmt_inf_id", meta.PaymentInfoID),
		zap.String("error_kind", converter.Kind(err)),
		zap.Error(err),
	)
	responses.Error(c, http.StatusInternalServerError, "Error processing the file.")
}

// missingFields lists the metadata fields that are empty.
func missingFields(meta types.BatchMetadata) []string {
	var missing []string
	for _, issue := range validation.ValidateMetadata(meta) {
		if issue.Severity == validation.SeverityError {
			missing = append(missing, issue.Field)
		}
	}
	return missing
}
