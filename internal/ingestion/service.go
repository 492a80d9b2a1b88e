package ingestion

import (
	"context"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/gin-gonic/gin"
)

// Submitter buffers accepted records for asynchronous writing.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

type Service struct {
	dispatcher       Submitter
	maxBodySizeBytes int
	now              func() time.Time
}

func NewService(dispatcher Submitter, maxBodySizeMB int) *Service {
	if dispatcher == nil {
		panic("ingestion: dispatcher must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		dispatcher:       dispatcher,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		now:              time.Now,
	}
}

// RegisterRoutes registers one POST /log/{category} route per category.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	for _, c := range v1.Categories() {
		r.POST("/log/"+string(c), s.IngestHandler(c))
	}
}
