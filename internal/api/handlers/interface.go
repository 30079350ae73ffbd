package handlers

import (
	"github.com/ginjaninja78/payroll-pain001/internal/converter"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// Converter turns a stored upload into a pain.001 document. The handler
// depends on this interface, not on the concrete pipeline.
//
//go:generate mockgen -destination=mocks/mock_converter.go -package=mocks -source=interface.go
type Converter interface {
	ConvertFile(path string, meta types.BatchMetadata) (*converter.Result, error)
}
