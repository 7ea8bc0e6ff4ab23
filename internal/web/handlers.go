package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/multierr"

	"github.com/mmynk/splitbill/internal/editor"
	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/render"
	"github.com/mmynk/splitbill/internal/service"
	"github.com/mmynk/splitbill/internal/session"
)

// errBadAction is returned for an orders form whose action button is not
// recognised.
var errBadAction = errors.New("unknown form action")

type pageData struct {
	L       *i18n.Localizer
	Lang    string
	Locales []localeOption
	Step    string
	Notice  string

	Count int
	Min   int
	Max   int

	People         []personForm
	TaxPercent     string
	AdditionalCost string

	Summary *render.Summary
}

type localeOption struct {
	Code     string
	Label    string
	Selected bool
}

type personForm struct {
	Index       int
	Heading     string
	Placeholder string
	Name        string
	Lines       []lineForm
	Subtotal    string
	Removable   bool
}

type lineForm struct {
	Index int
	Item  string
	Price string
}

func (s *Server) pageData(sess *session.Session, notice string) pageData {
	l := i18n.New(sess.Locale)
	data := pageData{
		L:              l,
		Lang:           string(l.Locale()),
		Step:           sess.Step.String(),
		Notice:         notice,
		Count:          sess.Count,
		Min:            session.MinParticipants,
		Max:            session.MaxParticipants,
		TaxPercent:     l.Percent(sess.Settings.TaxPercent),
		AdditionalCost: formatAmount(sess.Settings.AdditionalCost),
	}

	for _, loc := range i18n.Locales() {
		data.Locales = append(data.Locales, localeOption{
			Code:     string(loc),
			Label:    loc.Label(),
			Selected: loc == l.Locale(),
		})
	}

	switch sess.Step {
	case session.StepCollectingOrders:
		for i, p := range sess.Participants {
			person := personForm{
				Index:       i,
				Heading:     l.DisplayName(p.Name, i),
				Placeholder: l.T("person.placeholder", i+1),
				Name:        p.Name,
				Subtotal:    l.Money(editor.RunningSubtotal(p)),
				Removable:   len(p.Orders) > 1,
			}
			for j, o := range p.Orders {
				person.Lines = append(person.Lines, lineForm{Index: j, Item: o.Item, Price: formatAmount(o.Price)})
			}
			data.People = append(data.People, person)
		}
	case session.StepShowingSummary:
		summary := s.sessions.Summary(sess)
		data.Summary = &summary
	}

	return data
}

// formatAmount renders an amount for an input field; zero shows as empty.
func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		serverError(w, err)
		return
	}
	s.render(w, http.StatusOK, sess, "")
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		serverError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.apply(w, r, sess,
		session.SetCount{Value: r.PostForm.Get("count")},
		session.ConfirmCount{},
	)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		serverError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	intents, err := orderIntents(sess, r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.apply(w, r, sess, intents...)
}

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		serverError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.apply(w, r, sess, session.SetLocale{Locale: r.PostForm.Get("locale")})
}

func (s *Server) handleIntent(in session.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.loadSession(w, r)
		if err != nil {
			serverError(w, err)
			return
		}
		s.apply(w, r, sess, in)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		serverError(w, err)
		return
	}
	l := i18n.New(sess.Locale)
	if sess.Step != session.StepShowingSummary {
		s.render(w, http.StatusUnprocessableEntity, sess, l.T("error.invalid_step"))
		return
	}

	filename, png, err := s.sessions.ExportBytes(r.Context(), sess.ID)
	if err != nil {
		s.render(w, http.StatusInternalServerError, sess, l.T("error.export"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}

// apply runs intents against the session. Accepted intents are kept even
// when a later one is rejected. A rejection with a user-facing notification
// re-renders the current step with it; anything else goes back to the page.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, sess *session.Session, intents ...session.Intent) {
	updated, err := s.sessions.Apply(r.Context(), sess.ID, intents...)
	if err == nil {
		redirectHome(w, r)
		return
	}
	if updated == nil {
		if service.IsNotFound(err) {
			redirectHome(w, r)
			return
		}
		serverError(w, err)
		return
	}

	if notice, ok := session.Notice(err, i18n.New(updated.Locale)); ok {
		s.render(w, http.StatusUnprocessableEntity, updated, notice)
		return
	}

	// Left over from a stale form, such as a line removed in another tab.
	for _, e := range multierr.Errors(err) {
		slog.Warn("Form input rejected", "session_id", updated.ID, "error", e)
	}
	redirectHome(w, r)
}

// orderIntents turns the orders form into intents: every field edit, then the
// settings, then the pressed button. Fields absent from the form are left
// alone.
func orderIntents(sess *session.Session, form url.Values) ([]session.Intent, error) {
	var intents []session.Intent
	edit := func(i int, e editor.Edit) {
		intents = append(intents, session.EditParticipant{Index: i, Edit: e})
	}

	for i, p := range sess.Participants {
		if v, ok := form[fmt.Sprintf("name-%d", i)]; ok {
			edit(i, editor.Edit{Op: editor.OpSetName, Name: v[0]})
		}
		for j := range p.Orders {
			if v, ok := form[fmt.Sprintf("item-%d-%d", i, j)]; ok {
				edit(i, editor.Edit{Op: editor.OpUpdateLine, Line: j, Field: editor.FieldItem, Value: v[0]})
			}
			if v, ok := form[fmt.Sprintf("price-%d-%d", i, j)]; ok {
				edit(i, editor.Edit{Op: editor.OpUpdateLine, Line: j, Field: editor.FieldPrice, Value: v[0]})
			}
		}
	}
	if v, ok := form["tax"]; ok {
		intents = append(intents, session.SetTaxPercent{Value: v[0]})
	}
	if v, ok := form["additional"]; ok {
		intents = append(intents, session.SetAdditionalCost{Value: v[0]})
	}

	action, err := actionIntent(form.Get("action"))
	if err != nil {
		return nil, err
	}
	if action != nil {
		intents = append(intents, action)
	}
	return intents, nil
}

// actionIntent parses the orders form button: "calculate", "add-<person>" or
// "remove-<person>-<line>". An empty action only saves the fields.
func actionIntent(action string) (session.Intent, error) {
	var person, line int
	switch {
	case action == "":
		return nil, nil
	case action == "calculate":
		return session.Calculate{}, nil
	case scan(action, "add-%d", &person):
		return session.EditParticipant{Index: person, Edit: editor.Edit{Op: editor.OpAddLine}}, nil
	case scan(action, "remove-%d-%d", &person, &line):
		return session.EditParticipant{Index: person, Edit: editor.Edit{Op: editor.OpRemoveLine, Line: line}}, nil
	}
	return nil, fmt.Errorf("%w: %q", errBadAction, action)
}

func scan(s, format string, args ...any) bool {
	n, err := fmt.Sscanf(s, format, args...)
	return err == nil && n == len(args)
}
