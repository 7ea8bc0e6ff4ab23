package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/editor"
	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/middleware"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/session"
	"github.com/mmynk/splitbill/internal/storage"
	"github.com/mmynk/splitbill/internal/token"
)

// BillSplitServiceName is the fully-qualified name of the Connect service.
const BillSplitServiceName = "splitbill.v1.BillSplitService"

// Procedure paths of BillSplitService.
const (
	StartSessionProcedure      = "/" + BillSplitServiceName + "/StartSession"
	GetSessionProcedure        = "/" + BillSplitServiceName + "/GetSession"
	ApplyIntentProcedure       = "/" + BillSplitServiceName + "/ApplyIntent"
	ComputeSettlementProcedure = "/" + BillSplitServiceName + "/ComputeSettlement"
	ExportSummaryProcedure     = "/" + BillSplitServiceName + "/ExportSummary"
)

// BillSplitHandler serves BillSplitService over Connect.
type BillSplitHandler struct {
	sessions *SessionService
}

// NewBillSplitServiceHandler builds an HTTP handler serving every procedure of
// BillSplitService and returns the path to mount it on. The JSON codec is
// always installed.
func NewBillSplitServiceHandler(sessions *SessionService, opts ...connect.HandlerOption) (string, http.Handler) {
	h := &BillSplitHandler{sessions: sessions}
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, connect.NewUnaryHandler(StartSessionProcedure, h.StartSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, h.GetSession, opts...))
	mux.Handle(ApplyIntentProcedure, connect.NewUnaryHandler(ApplyIntentProcedure, h.ApplyIntent, opts...))
	mux.Handle(ComputeSettlementProcedure, connect.NewUnaryHandler(ComputeSettlementProcedure, h.ComputeSettlement, opts...))
	mux.Handle(ExportSummaryProcedure, connect.NewUnaryHandler(ExportSummaryProcedure, h.ExportSummary, opts...))
	return "/" + BillSplitServiceName + "/", mux
}

// StartSession opens a session and returns its token.
func (h *BillSplitHandler) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[SessionResponse], error) {
	sess, tok, err := h.sessions.Start(ctx, req.Msg.Locale)
	if err != nil {
		slog.Error("StartSession failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&SessionResponse{Token: tok, Session: toView(sess)}), nil
}

// GetSession returns the current state of a session.
func (h *BillSplitHandler) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := h.sessions.Resume(ctx, sessionToken(ctx, req.Msg.Token))
	if err != nil {
		return nil, toConnectError(err, i18n.New(i18n.DefaultLocale))
	}
	return connect.NewResponse(&SessionResponse{Session: toView(sess)}), nil
}

// ApplyIntent applies the requested intents in order. When any intent is
// rejected the error carries the localized notification; the session keeps
// every intent that was accepted.
func (h *BillSplitHandler) ApplyIntent(ctx context.Context, req *connect.Request[ApplyIntentRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := h.sessions.Resume(ctx, sessionToken(ctx, req.Msg.Token))
	if err != nil {
		return nil, toConnectError(err, i18n.New(i18n.DefaultLocale))
	}

	intents := make([]session.Intent, 0, len(req.Msg.Intents))
	for _, m := range req.Msg.Intents {
		in, err := toIntent(m)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		intents = append(intents, in)
	}

	sess, err = h.sessions.Apply(ctx, sess.ID, intents...)
	if err != nil {
		locale := i18n.DefaultLocale
		if sess != nil {
			locale = sess.Locale
		}
		return nil, toConnectError(err, i18n.New(locale))
	}
	return connect.NewResponse(&SessionResponse{Session: toView(sess)}), nil
}

// ComputeSettlement calculates a settlement without a session.
func (h *BillSplitHandler) ComputeSettlement(ctx context.Context, req *connect.Request[ComputeSettlementRequest]) (*connect.Response[ComputeSettlementResponse], error) {
	locale, ok := i18n.Parse(req.Msg.Locale)
	if !ok {
		locale = h.sessions.locale
	}
	l := i18n.New(locale)

	settings := models.Settings{TaxPercent: req.Msg.TaxPercent, AdditionalCost: req.Msg.AdditionalCost}
	results, err := h.sessions.Compute(toParticipants(req.Msg.Participants), settings)
	if err != nil {
		return nil, toConnectError(err, l)
	}

	grandTotal := calculator.GrandTotal(results)
	return connect.NewResponse(&ComputeSettlementResponse{
		Results:        results,
		GrandTotal:     grandTotal,
		GrandTotalText: l.T("summary.grand_total", l.Money(grandTotal)),
	}), nil
}

// ExportSummary renders the summary of a calculated session as PNG.
func (h *BillSplitHandler) ExportSummary(ctx context.Context, req *connect.Request[ExportSummaryRequest]) (*connect.Response[ExportSummaryResponse], error) {
	sess, err := h.sessions.Resume(ctx, sessionToken(ctx, req.Msg.Token))
	if err != nil {
		return nil, toConnectError(err, i18n.New(i18n.DefaultLocale))
	}

	filename, png, err := h.sessions.ExportBytes(ctx, sess.ID)
	if err != nil {
		l := i18n.New(sess.Locale)
		if errors.Is(err, session.ErrInvalidTransition) {
			return nil, toConnectError(err, l)
		}
		return nil, connect.NewError(connect.CodeInternal, errors.New(l.T("error.export")))
	}
	return connect.NewResponse(&ExportSummaryResponse{Filename: filename, PNG: png}), nil
}

// sessionToken prefers the token in the message over the bearer header.
func sessionToken(ctx context.Context, fromMessage string) string {
	if fromMessage != "" {
		return fromMessage
	}
	return middleware.SessionToken(ctx)
}

// toConnectError maps domain errors onto Connect codes. Rejections the user
// can act on carry the localized notification as their message.
func toConnectError(err error, l *i18n.Localizer) error {
	switch {
	case errors.Is(err, token.ErrMissingToken), errors.Is(err, token.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrInvalidTransition):
		notice, _ := session.Notice(err, l)
		return connect.NewError(connect.CodeFailedPrecondition, errors.New(notice))
	}

	if notice, ok := session.Notice(err, l); ok {
		return connect.NewError(connect.CodeInvalidArgument, errors.New(notice))
	}

	switch {
	case errors.Is(err, session.ErrParticipantIndex),
		errors.Is(err, session.ErrUnknownLocale),
		errors.Is(err, editor.ErrLineIndex),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, editor.ErrUnknownOp),
		errors.Is(err, ErrUnknownIntent):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	slog.Error("Unhandled service error", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

// BillSplitClient is a Connect client for BillSplitService.
type BillSplitClient struct {
	startSession      *connect.Client[StartSessionRequest, SessionResponse]
	getSession        *connect.Client[GetSessionRequest, SessionResponse]
	applyIntent       *connect.Client[ApplyIntentRequest, SessionResponse]
	computeSettlement *connect.Client[ComputeSettlementRequest, ComputeSettlementResponse]
	exportSummary     *connect.Client[ExportSummaryRequest, ExportSummaryResponse]
}

// NewBillSplitClient creates a client for the service at baseURL.
func NewBillSplitClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillSplitClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &BillSplitClient{
		startSession:      connect.NewClient[StartSessionRequest, SessionResponse](httpClient, baseURL+StartSessionProcedure, opts...),
		getSession:        connect.NewClient[GetSessionRequest, SessionResponse](httpClient, baseURL+GetSessionProcedure, opts...),
		applyIntent:       connect.NewClient[ApplyIntentRequest, SessionResponse](httpClient, baseURL+ApplyIntentProcedure, opts...),
		computeSettlement: connect.NewClient[ComputeSettlementRequest, ComputeSettlementResponse](httpClient, baseURL+ComputeSettlementProcedure, opts...),
		exportSummary:     connect.NewClient[ExportSummaryRequest, ExportSummaryResponse](httpClient, baseURL+ExportSummaryProcedure, opts...),
	}
}

func (c *BillSplitClient) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *BillSplitClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *BillSplitClient) ApplyIntent(ctx context.Context, req *connect.Request[ApplyIntentRequest]) (*connect.Response[SessionResponse], error) {
	return c.applyIntent.CallUnary(ctx, req)
}

func (c *BillSplitClient) ComputeSettlement(ctx context.Context, req *connect.Request[ComputeSettlementRequest]) (*connect.Response[ComputeSettlementResponse], error) {
	return c.computeSettlement.CallUnary(ctx, req)
}

func (c *BillSplitClient) ExportSummary(ctx context.Context, req *connect.Request[ExportSummaryRequest]) (*connect.Response[ExportSummaryResponse], error) {
	return c.exportSummary.CallUnary(ctx, req)
}
