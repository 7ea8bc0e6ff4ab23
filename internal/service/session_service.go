package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/metrics"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/render"
	"github.com/mmynk/splitbill/internal/session"
	"github.com/mmynk/splitbill/internal/storage"
	"github.com/mmynk/splitbill/internal/token"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 2 * time.Hour

// Options configures a SessionService.
type Options struct {
	Store    storage.Store
	Tokens   *token.Manager
	Exporter *render.Exporter
	Metrics  *metrics.Metrics // optional

	TTL           time.Duration
	DefaultLocale i18n.Locale
}

// SessionService owns the session lifecycle: it loads a session, applies
// intents, and stores the result. Both the web UI and the Connect API go
// through it.
type SessionService struct {
	store    storage.Store
	tokens   *token.Manager
	exporter *render.Exporter
	metrics  *metrics.Metrics
	ttl      time.Duration
	locale   i18n.Locale

	// mu serializes load-apply-save so concurrent requests on one session
	// cannot lose each other's updates.
	mu  sync.Mutex
	now func() time.Time
}

// NewSessionService creates a SessionService.
func NewSessionService(opts Options) *SessionService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	locale := opts.DefaultLocale
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	exporter := opts.Exporter
	if exporter == nil {
		exporter = render.NewExporter(render.NewCanvasRasterizer())
	}
	return &SessionService{
		store:    opts.Store,
		tokens:   opts.Tokens,
		exporter: exporter,
		metrics:  opts.Metrics,
		ttl:      ttl,
		locale:   locale,
		now:      time.Now,
	}
}

// Start creates and stores a new session and returns it with its token. An
// empty or unknown locale falls back to the service default.
func (s *SessionService) Start(ctx context.Context, locale string) (*session.Session, string, error) {
	l, ok := i18n.Parse(locale)
	if !ok {
		l = s.locale
	}

	sess := session.New(uuid.NewString(), l)
	sess.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sess, s.ttl); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	tok, err := s.Token(sess)
	if err != nil {
		return nil, "", err
	}

	s.metrics.IncSessions()
	slog.Debug("Session started", "session_id", sess.ID, "locale", sess.Locale)
	return sess, tok, nil
}

// Resume validates a session token and loads its session.
func (s *SessionService) Resume(ctx context.Context, tok string) (*session.Session, error) {
	if tok == "" {
		return nil, token.ErrMissingToken
	}
	id, err := s.tokens.Validate(tok)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Token issues a new token for sess, valid for a full TTL from now.
func (s *SessionService) Token(sess *session.Session) (string, error) {
	tok, err := s.tokens.Generate(sess.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return tok, nil
}

// Get loads a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return sess, nil
}

// Apply applies intents to the session in order and stores the outcome. A
// rejected intent leaves the session as it was before that intent; the others
// still apply. All rejections are returned together, and the returned session
// is always the stored one.
func (s *SessionService) Apply(ctx context.Context, id string, intents ...session.Intent) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var rejected error
	applied := 0
	for _, in := range intents {
		if err := sess.Apply(in, s.now()); err != nil {
			s.metrics.ObserveIntent(in.Name(), metrics.OutcomeRejected)
			slog.Debug("Intent rejected", "session_id", id, "intent", in.Name(), "error", err)
			rejected = multierr.Append(rejected, err)
			continue
		}
		applied++
		s.metrics.ObserveIntent(in.Name(), metrics.OutcomeApplied)
		if _, ok := in.(session.Calculate); ok {
			s.metrics.ObserveCalculation(len(sess.Participants))
		}
	}

	if applied > 0 {
		if err := s.store.Put(ctx, sess, s.ttl); err != nil {
			return nil, fmt.Errorf("failed to store session %s: %w", id, err)
		}
	}
	return sess, rejected
}

// Summary builds the localized summary of a calculated session.
func (s *SessionService) Summary(sess *session.Session) render.Summary {
	return render.Build(sess.Results, sess.Settings, i18n.New(sess.Locale), s.now())
}

// Export writes the PNG summary of a session to w and returns its file name.
// Only a session showing its summary can be exported.
func (s *SessionService) Export(ctx context.Context, id string, w io.Writer) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if sess.Step != session.StepShowingSummary {
		return "", &session.TransitionError{Intent: "export", Step: sess.Step}
	}

	start := time.Now()
	filename, err := s.exporter.Export(ctx, s.Summary(sess), w)
	if err != nil {
		s.metrics.ObserveExport(metrics.OutcomeFailure, time.Since(start))
		slog.Error("Summary export failed", "session_id", id, "error", err)
		return "", err
	}

	s.metrics.ObserveExport(metrics.OutcomeSuccess, time.Since(start))
	slog.Info("Summary exported", "session_id", id, "filename", filename)
	return filename, nil
}

// ExportBytes is Export into memory, for callers that need the file name
// before writing any output.
func (s *SessionService) ExportBytes(ctx context.Context, id string) (string, []byte, error) {
	var buf bytes.Buffer
	filename, err := s.Export(ctx, id, &buf)
	if err != nil {
		return "", nil, err
	}
	return filename, buf.Bytes(), nil
}

// Compute calculates a settlement without a session. Like Calculate, every
// participant needs at least one valid order line.
func (s *SessionService) Compute(participants []models.Participant, settings models.Settings) ([]models.Result, error) {
	if len(participants) < session.MinParticipants || len(participants) > session.MaxParticipants {
		return nil, session.ErrCountOutOfRange
	}
	if index, ok := calculator.FirstWithoutValidOrder(participants); ok {
		return nil, &session.MissingOrdersError{Index: index, Name: participants[index].Name}
	}

	results := calculator.Compute(participants, settings.TaxPercent, settings.AdditionalCost)
	s.metrics.ObserveCalculation(len(participants))
	return results, nil
}

// PurgeExpired removes expired sessions when the store needs explicit
// expiry. It is a no-op for stores with native TTLs.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	p, ok := s.store.(storage.Purger)
	if !ok {
		return 0, nil
	}
	n, err := p.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return n, nil
}

// IsNotFound reports whether err means the session no longer exists.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
