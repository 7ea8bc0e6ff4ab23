package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitbill/internal/editor"
	"github.com/mmynk/splitbill/internal/metrics"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/render"
	"github.com/mmynk/splitbill/internal/session"
	"github.com/mmynk/splitbill/internal/storage"
	"github.com/mmynk/splitbill/internal/storage/redisstore"
	"github.com/mmynk/splitbill/internal/storage/sqlite"
	"github.com/mmynk/splitbill/internal/token"
)

func newTestService(t *testing.T, store storage.Store, opts Options) *SessionService {
	t.Helper()
	tokens, err := token.NewManager("", time.Hour)
	require.NoError(t, err)
	opts.Store = store
	opts.Tokens = tokens
	return NewSessionService(opts)
}

func newSQLiteService(t *testing.T, opts Options) *SessionService {
	t.Helper()
	store, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return newTestService(t, store, opts)
}

func TestSessionService_ApplyKeepsAcceptedIntents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newSQLiteService(t, Options{Metrics: m})
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "")
	require.NoError(t, err)

	updated, err := svc.Apply(ctx, sess.ID,
		session.SetCount{Value: "3"},
		session.Back{},
		session.ConfirmCount{},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrInvalidTransition))
	assert.Equal(t, session.StepCollectingOrders, updated.Step)
	assert.Len(t, updated.Participants, 3)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Participants, stored.Participants)

	// set_count/applied, back/rejected, confirm_count/applied
	count, err := testutil.GatherAndCount(reg, "splitbill_intents_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSessionService_ApplyStoresCoercedNumbers(t *testing.T) {
	svc := newSQLiteService(t, Options{})
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, sess.ID, session.SetCount{Value: "18446744073709551621"}, session.ConfirmCount{})
	require.ErrorIs(t, err, session.ErrCountOutOfRange)

	_, err = svc.Apply(ctx, sess.ID, session.SetCount{Value: "2"}, session.ConfirmCount{})
	require.NoError(t, err)

	updated, err := svc.Apply(ctx, sess.ID,
		session.EditParticipant{Index: 0, Edit: editor.Edit{Op: editor.OpUpdateLine, Field: editor.FieldPrice, Value: "1e400"}},
		session.SetTaxPercent{Value: "1e400"},
		session.SetAdditionalCost{Value: "1e10000000"},
	)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Participants[0].Orders[0].Price)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.Participants[0].Orders[0].Price)
	assert.Equal(t, 0.0, stored.Settings.AdditionalCost)
}

func TestSessionService_ApplyCollectsEveryRejection(t *testing.T) {
	svc := newSQLiteService(t, Options{})
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "en")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, sess.ID, session.ConfirmCount{})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, sess.ID,
		session.EditParticipant{Index: 7, Edit: editor.Edit{Op: editor.OpAddLine}},
		session.EditParticipant{Index: 0, Edit: editor.Edit{Op: editor.OpUpdateLine, Line: 4, Field: editor.FieldItem, Value: "x"}},
		session.Calculate{},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrParticipantIndex)
	assert.ErrorIs(t, err, editor.ErrLineIndex)

	var missing *session.MissingOrdersError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, missing.Index)
}

func TestSessionService_ApplyUnknownSession(t *testing.T) {
	svc := newSQLiteService(t, Options{})

	_, err := svc.Apply(context.Background(), "missing", session.Reset{})
	assert.True(t, IsNotFound(err))
}

func TestSessionService_Resume(t *testing.T) {
	svc := newSQLiteService(t, Options{})
	ctx := context.Background()

	sess, tok, err := svc.Start(ctx, "en")
	require.NoError(t, err)

	resumed, err := svc.Resume(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, resumed.ID)

	_, err = svc.Resume(ctx, "")
	assert.ErrorIs(t, err, token.ErrMissingToken)

	_, err = svc.Resume(ctx, tok+"x")
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	refreshed, err := svc.Token(resumed)
	require.NoError(t, err)
	again, err := svc.Resume(ctx, refreshed)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
}

func TestSessionService_Compute(t *testing.T) {
	svc := newSQLiteService(t, Options{})

	_, err := svc.Compute(nil, models.DefaultSettings())
	assert.ErrorIs(t, err, session.ErrCountOutOfRange)

	results, err := svc.Compute([]models.Participant{
		{Name: "A", Orders: []models.OrderLine{{Item: "Teh", Price: 10000}}},
	}, models.Settings{TaxPercent: 10, AdditionalCost: 500})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 11500.0, results[0].FinalTotal)
}

type brokenRasterizer struct{}

func (brokenRasterizer) Rasterize(context.Context, render.Summary) (image.Image, error) {
	return nil, errors.New("canvas unavailable")
}

func TestSessionService_ExportFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newSQLiteService(t, Options{Metrics: m, Exporter: render.NewExporter(brokenRasterizer{})})
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, sess.ID,
		session.ConfirmCount{},
		session.EditParticipant{Index: 0, Edit: editor.Edit{Op: editor.OpUpdateLine, Field: editor.FieldItem, Value: "Bakso"}},
		session.EditParticipant{Index: 0, Edit: editor.Edit{Op: editor.OpUpdateLine, Field: editor.FieldPrice, Value: "20000"}},
		session.EditParticipant{Index: 1, Edit: editor.Edit{Op: editor.OpUpdateLine, Field: editor.FieldItem, Value: "Mie"}},
		session.EditParticipant{Index: 1, Edit: editor.Edit{Op: editor.OpUpdateLine, Field: editor.FieldPrice, Value: "18000"}},
		session.Calculate{},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = svc.Export(ctx, sess.ID, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
	count, err := testutil.GatherAndCount(reg, "splitbill_exports_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The session stays on its summary.
	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StepShowingSummary, stored.Step)
}

func TestSessionService_PurgeExpired(t *testing.T) {
	svc := newSQLiteService(t, Options{TTL: time.Minute})
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Get(ctx, sess.ID)
	assert.True(t, IsNotFound(err))
}

func TestSessionService_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := redisstore.New(context.Background(), redisstore.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := newTestService(t, store, Options{TTL: time.Minute})
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "en")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, sess.ID, session.SetCount{Value: "4"}, session.ConfirmCount{})
	require.NoError(t, err)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Participants, 4)

	// Redis expires keys itself.
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	mr.FastForward(2 * time.Minute)
	_, err = svc.Get(ctx, sess.ID)
	assert.True(t, IsNotFound(err))
}
