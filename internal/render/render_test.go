package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/editor"
	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/session"
)

var exportTime = time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

func workedExample() ([]models.Result, models.Settings) {
	settings := models.Settings{TaxPercent: 10, AdditionalCost: 2000}
	participants := []models.Participant{
		{Name: "", Orders: []models.OrderLine{{Item: "Nasi Goreng", Price: 25000}}},
		{Name: "Dewi", Orders: []models.OrderLine{{Item: "Es Teh", Price: 5000}, {Item: "", Price: 3000}}},
	}
	return calculator.Compute(participants, settings.TaxPercent, settings.AdditionalCost), settings
}

func TestBuild(t *testing.T) {
	results, settings := workedExample()
	s := Build(results, settings, i18n.New(i18n.Indonesian), exportTime)

	assert.Equal(t, i18n.Indonesian, s.Locale)
	assert.Equal(t, "Total Keseluruhan: Rp 35.000", s.GrandTotalLine)
	assert.Equal(t, "Pajak: 10% - Biaya Tambahan: Rp 2.000", s.ChargesLine)
	assert.Equal(t, "Pajak (10%):", s.TaxLabel)
	assert.Equal(t, 35000.0, s.GrandTotal)

	require.Len(t, s.People, 2)
	assert.Equal(t, "Orang 1", s.People[0].Name)
	assert.Equal(t, "Rp 28.500", s.People[0].Total)
	assert.Equal(t, "Rp 1.000", s.People[0].AdditionalShare)

	assert.Equal(t, "Dewi", s.People[1].Name)
	assert.Equal(t, []LineSummary{{Item: "Es Teh", Price: "Rp 5.000"}}, s.People[1].Lines)
	assert.Equal(t, "Rp 6.500", s.People[1].Total)
}

func TestBuildEnglish(t *testing.T) {
	results, settings := workedExample()
	s := Build(results, settings, i18n.New(i18n.English), exportTime)

	assert.Equal(t, "Grand Total: Rp 35.000", s.GrandTotalLine)
	assert.Equal(t, "Person 1", s.People[0].Name)
	assert.Contains(t, s.GeneratedOn, "16 October 2026")
}

func TestDigest(t *testing.T) {
	results, settings := workedExample()
	d := Build(results, settings, i18n.New(i18n.Indonesian), exportTime).Digest()

	assert.True(t, strings.HasPrefix(d, "Split Bill Result\n2026-10-16\n"), d)
	assert.Contains(t, d, "Dewi: Rp 6.500")
	assert.True(t, strings.HasSuffix(d, "Total Keseluruhan: Rp 35.000"), d)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "split-bill-2026-10-16.png", Filename(exportTime))

	// 06:00 on the 17th in Jakarta is still the 16th in UTC.
	jakarta := time.FixedZone("WIB", 7*60*60)
	assert.Equal(t, "split-bill-2026-10-16.png", Filename(time.Date(2026, time.October, 17, 6, 0, 0, 0, jakarta)))
}

func TestCanvasRasterizer(t *testing.T) {
	results, settings := workedExample()
	s := Build(results, settings, i18n.New(i18n.Indonesian), exportTime)

	r := NewCanvasRasterizer()
	img, err := r.Rasterize(context.Background(), s)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, canvasWidth*DefaultScale, b.Dx())
	assert.Equal(t, 0, b.Dy()%DefaultScale)

	// Corners stay background, the text area is not blank.
	assert.Equal(t, colorBG, img.At(0, 0))
	assert.True(t, hasInk(img, image.Rect(0, 0, b.Dx(), margin*DefaultScale*4)))
}

func TestCanvasRasterizerGrowsWithPeople(t *testing.T) {
	l := i18n.New(i18n.English)
	one := Build([]models.Result{{Name: "A", FinalTotal: 1}}, models.DefaultSettings(), l, exportTime)
	three := Build([]models.Result{{Name: "A"}, {Name: "B"}, {Name: "C"}}, models.DefaultSettings(), l, exportTime)

	r := NewCanvasRasterizer()
	small, err := r.Rasterize(context.Background(), one)
	require.NoError(t, err)
	large, err := r.Rasterize(context.Background(), three)
	require.NoError(t, err)

	assert.Greater(t, large.Bounds().Dy(), small.Bounds().Dy())
}

func TestCanvasRasterizerFullTable(t *testing.T) {
	participants := make([]models.Participant, session.MaxParticipants)
	for i := range participants {
		for j := 0; j < 9; j++ {
			participants[i].Orders = append(participants[i].Orders, models.OrderLine{Item: fmt.Sprintf("Item %d", j), Price: 1000})
		}
	}
	settings := models.DefaultSettings()
	results := calculator.Compute(participants, settings.TaxPercent, settings.AdditionalCost)
	s := Build(results, settings, i18n.New(i18n.Indonesian), exportTime)

	e := NewExporter(NewCanvasRasterizer())
	var buf bytes.Buffer
	_, err := e.Export(context.Background(), s, &buf)
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, canvasWidth*DefaultScale, img.Bounds().Dx())
}

func TestCanvasRasterizerLargestSummary(t *testing.T) {
	s := Summary{Title: "x"}
	for i := 0; i < session.MaxParticipants; i++ {
		s.People = append(s.People, PersonSummary{Name: "p", Lines: make([]LineSummary, editor.MaxOrderLines)})
	}

	img, err := NewCanvasRasterizer().Rasterize(context.Background(), s)
	require.NoError(t, err)

	b := img.Bounds()
	assert.LessOrEqual(t, b.Dx()*b.Dy(), maxScaledPixels)
	assert.Equal(t, canvasWidth, b.Dx(), "drawn at scale 1")
}

func TestFitScale(t *testing.T) {
	assert.Equal(t, DefaultScale, fitScale(DefaultScale, 400))
	assert.Equal(t, 1, fitScale(DefaultScale, 30000))
	assert.Equal(t, 1, fitScale(0, 400))
}

func TestCanvasRasterizerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCanvasRasterizer().Rasterize(ctx, Summary{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitWidth(t *testing.T) {
	r := NewCanvasRasterizer()
	long := strings.Repeat("Nasi Goreng Spesial ", 10)

	got := fitWidth(r.font, long, 100)
	assert.True(t, strings.HasSuffix(got, ".."))
	assert.LessOrEqual(t, textWidth(r.font, got), 100)

	assert.Equal(t, "Es Teh", fitWidth(r.font, "Es Teh", 100))
	assert.Equal(t, "", fitWidth(r.font, "Es Teh", 0))

	huge := strings.Repeat("W", 1_000_000)
	got = fitWidth(r.font, huge, 100)
	assert.True(t, strings.HasSuffix(got, ".."))
	assert.LessOrEqual(t, textWidth(r.font, got), 100)
	assert.Greater(t, textWidth(r.font, got+"W"), 100, "should keep as much as fits")
}

func TestExport(t *testing.T) {
	results, settings := workedExample()
	s := Build(results, settings, i18n.New(i18n.Indonesian), exportTime)

	e := NewExporter(NewCanvasRasterizer())
	e.now = func() time.Time { return exportTime }

	var buf bytes.Buffer
	name, err := e.Export(context.Background(), s, &buf)
	require.NoError(t, err)
	assert.Equal(t, "split-bill-2026-10-16.png", name)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, canvasWidth*DefaultScale, img.Bounds().Dx())
}

type failingRasterizer struct{ err error }

func (f failingRasterizer) Rasterize(context.Context, Summary) (image.Image, error) {
	return nil, f.err
}

func TestExportFailureWritesNothing(t *testing.T) {
	boom := errors.New("boom")
	e := NewExporter(failingRasterizer{err: boom})

	var buf bytes.Buffer
	name, err := e.Export(context.Background(), Summary{}, &buf)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, name)
	assert.Zero(t, buf.Len())
}

func hasInk(img image.Image, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.At(x, y) != colorBG {
				return true
			}
		}
	}
	return false
}
