package inbound

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-reclaim/core"
)

const SurfaceClaimSubmission = "claim_submission"

// ClaimSubmissionHandler is the create-or-amend-case surface. Decode
// failures short-circuit before the pipeline but still emit exactly one
// audit record.
type ClaimSubmissionHandler struct {
	Service core.ClaimService
	Audit   core.AuditEmitter
	NewID   func() string
}

func NewClaimSubmissionHandler(service core.ClaimService, emitter core.AuditEmitter) *ClaimSubmissionHandler {
	return &ClaimSubmissionHandler{
		Service: service,
		Audit:   emitter,
		NewID:   uuid.NewString,
	}
}

func (*ClaimSubmissionHandler) Surface() string {
	return SurfaceClaimSubmission
}

func (h *ClaimSubmissionHandler) Handle(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if h == nil || h.Service == nil {
		return core.InboundResult{}, inboundInternal("inbound: claim service is required", nil)
	}
	supplied := headerValue(req.Headers, CorrelationHeader)

	content, files, err := DecodeClaimRequest(req.Body)
	if err != nil {
		correlationID := core.ResolveCorrelationID(supplied, h.NewID)
		response := core.AggregateRejected(correlationID, core.StructuralFailure(""))
		if h.Audit != nil {
			h.Audit.ClaimRejected(ctx, core.ClaimRejectedEvent{
				CorrelationID: correlationID,
				Failure:       *response.Failure,
			})
		}
		return encodeResult(response)
	}

	response, err := h.Service.Submit(ctx, core.SubmitRequest{
		CorrelationID: supplied,
		Content:       content,
		Files:         files,
	})
	if err != nil {
		return core.InboundResult{}, err
	}
	return encodeResult(response)
}

func encodeResult(response core.CaseResponse) (core.InboundResult, error) {
	body, err := EncodeClaimResponse(response)
	if err != nil {
		return core.InboundResult{}, inboundWrapError(
			err,
			goerrors.CategoryInternal,
			"inbound: encode claim response",
			http.StatusInternalServerError,
			core.ClaimErrorInternal,
			map[string]any{"correlation_id": response.CorrelationID},
		)
	}
	return core.InboundResult{
		StatusCode: response.StatusCode,
		Body:       body,
		Metadata: map[string]any{
			"correlation_id": response.CorrelationID,
			"accepted":       response.Accepted(),
		},
	}, nil
}

var _ core.InboundHandler = (*ClaimSubmissionHandler)(nil)
