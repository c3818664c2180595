package changes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ChangesUsecase compares two requirement descriptions with the chat model
type ChangesUsecase struct {
	completer Completer
	logger    *zap.Logger
}

// NewUsecase creates a new change analysis use case
func NewUsecase(completer Completer, logger *zap.Logger) *ChangesUsecase {
	return &ChangesUsecase{
		completer: completer,
		logger:    logger,
	}
}

// Analyze returns the structured report, or the raw model output when it is
// not a JSON object. Only a failed completion is an error.
func (uc *ChangesUsecase) Analyze(ctx context.Context, oldDesc, newDesc string) (*entity.ChangeReport, error) {
	ctx = logger.WithAction(ctx, "analyze_changes")

	output, err := uc.completer.Complete(ctx, buildAnalysisRequest(oldDesc, newDesc))
	if err != nil {
		return nil, err
	}

	report, err := parseReport(output)
	if err != nil {
		ctxzap.Warn(ctx, "model output is not a structured report, returning raw text", zap.Error(err))
		return entity.NewRawChangeReport(output, oldDesc, newDesc), nil
	}

	report.OldDescription = oldDesc
	report.NewDescription = newDesc

	ctxzap.Info(ctx, "changes analyzed", zap.Int("changes", len(report.ChangesDetails)))

	return report, nil
}

type reportDTO struct {
	SummaryChanges  string                `json:"summary_changes"`
	ChangesDetails  []entity.ChangeDetail `json:"changes_details"`
	Recommendations string                `json:"recommendations"`
}

func parseReport(output string) (*entity.ChangeReport, error) {
	body := bytes.TrimSpace([]byte(stripCodeFence(output)))
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", entity.ErrParse)
	}

	var dto reportDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrParse, err)
	}

	return &entity.ChangeReport{
		SummaryChanges:  dto.SummaryChanges,
		ChangesDetails:  dto.ChangesDetails,
		Recommendations: dto.Recommendations,
	}, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}

	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
