package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/infra/i18n"
	"parallel-muhit-webapp/internal/usecase"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

// APIKeyParam is the query parameter carrying the credential on every URL.
const APIKeyParam = "x_api_key"

// Renderer turns a session snapshot into an HTML page.
type Renderer struct {
	tpl        *template.Template
	tr         *i18n.Translator
	contactURL string
}

func NewRenderer(tr *i18n.Translator, contactURL string) (*Renderer, error) {
	r := &Renderer{tr: tr, contactURL: contactURL}
	tpl, err := template.New("app").Funcs(template.FuncMap{
		"t": r.tr.T,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tpl = tpl
	return r, nil
}

// Amount renders a transaction amount in the locale's currency.
func (r *Renderer) Amount(d decimal.Decimal) string {
	return FormatAmount(d, r.tr.T("currency"))
}

// Days renders a day count with its unit, e.g. "5 kun".
func (r *Renderer) Days(n int) string {
	return r.tr.T("days_value", n)
}

// Render writes the page the session is on. apiKey is only used to build
// links back into the app.
func (r *Renderer) Render(w io.Writer, s *model.Session, apiKey string) error {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "layout", r.pageData(s, apiKey)); err != nil {
		return fmt.Errorf("render %s: %w", s.Page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderError writes a standalone error page with msgKey.
func (r *Renderer) RenderError(w io.Writer, msgKey, apiKey string) error {
	data := &PageData{
		Title:   r.tr.T("app_title"),
		Heading: r.tr.T("app_title"),
		Page:    "error",
		Error:   r.tr.T(msgKey),
		apiKey:  apiKey,
	}
	return r.tpl.ExecuteTemplate(w, "layout", data)
}

// PageData is everything the templates read.
type PageData struct {
	Title   string
	Heading string
	Back    string
	Page    string
	Branch  model.DashboardBranch
	Error   string
	Balance BalanceCard
	Renewal RenewalView
	Menu    []MenuItem
	History HistoryView
	FAQs    []model.FAQ
	Contact string

	apiKey string
}

// Action returns path with the credential query attached.
func (d *PageData) Action(path string) string {
	if d.apiKey == "" {
		return path
	}
	q := url.Values{}
	q.Set(APIKeyParam, d.apiKey)
	return path + "?" + q.Encode()
}

type BalanceCard struct {
	Label  string
	Amount string
}

type MenuItem struct {
	Icon   string
	Title  string
	Action string // form POST target
	Href   string // external link opened in a new tab
}

type Button struct {
	Label    string
	Disabled bool
	Action   string
}

type RenewalView struct {
	Show          bool
	PickerVisible bool
	FileName      string
	Submit        Button
	HasResult     bool
	ResultOK      bool
	ResultText    string
}

type HistoryView struct {
	Loading bool
	Empty   bool
	Rows    []HistoryRow
	Pages   []PageLink
	Prev    PageLink
	Next    PageLink
}

type HistoryRow struct {
	Date   string
	Amount string
}

type PageLink struct {
	Number   int
	Current  bool
	Disabled bool
}

func (r *Renderer) pageData(s *model.Session, apiKey string) *PageData {
	d := &PageData{
		Title:   r.tr.T("app_title"),
		Heading: r.tr.T("app_title"),
		Page:    string(s.Page),
		Branch:  s.DashboardBranch(),
		FAQs:    s.FAQs,
		Contact: r.contactURL,
		apiKey:  apiKey,
	}

	switch d.Branch {
	case model.BranchError:
		d.Error = r.tr.T(domain.MessageFor(domain.ProfileMessages, s.Profile.Reason))
	case model.BranchBalance:
		p, _ := s.Profile.Loaded()
		d.Balance = BalanceCard{
			Label:  r.tr.T("balance_label"),
			Amount: r.Days(p.RestOfDays),
		}
		d.Renewal = r.renewalView(s, d)
	}

	d.Menu = []MenuItem{
		{Icon: "🧾", Title: r.tr.T("menu_history"), Action: d.Action("/app/history")},
		{Icon: "❓", Title: r.tr.T("menu_faq"), Action: d.Action("/app/faq")},
		{Icon: "✏️", Title: r.tr.T("menu_edit_profile"), Href: r.contactURL},
		{Icon: "💬", Title: r.tr.T("menu_contact"), Href: r.contactURL},
	}

	switch s.Page {
	case model.PagePaymentHistory:
		d.Heading = r.tr.T("history_title")
		d.Back = d.Action("/app/back")
		d.History = r.historyView(s.History)
	case model.PageFAQ:
		d.Heading = r.tr.T("faq_title")
		d.Back = d.Action("/app/back")
	}
	return d
}

func (r *Renderer) renewalView(s *model.Session, d *PageData) RenewalView {
	if !s.Profile.NeedsRenewal() {
		return RenewalView{}
	}
	u := s.Upload
	v := RenewalView{
		Show:          true,
		PickerVisible: u.PickerVisible(),
		Submit: Button{
			Label:    r.tr.T("upload_submit"),
			Disabled: !u.CanSubmit(),
			Action:   d.Action("/app/upload/submit"),
		},
	}
	if u.File != nil {
		v.FileName = u.File.Name
	}
	if u.Status == model.UploadSubmitting {
		v.Submit.Label = r.tr.T("upload_submitting")
	}
	if u.Result != nil {
		v.HasResult = true
		v.ResultOK = u.Result.OK
		v.ResultText = u.Result.Message
		if v.ResultText == "" {
			v.ResultText = r.tr.T(u.Result.MessageKey)
		}
	}
	return v
}

func (r *Renderer) historyView(h model.HistoryState) HistoryView {
	total := h.TotalPages()
	v := HistoryView{
		Loading: h.Loading,
		Empty:   !h.Loading && h.Empty(),
		Prev:    PageLink{Number: h.Page - 1, Disabled: h.Page <= 1},
		Next:    PageLink{Number: h.Page + 1, Disabled: h.Page >= total},
	}
	for _, tx := range h.Results {
		v.Rows = append(v.Rows, HistoryRow{Date: FormatDate(tx.CreatedAt), Amount: r.Amount(tx.Amount)})
	}
	for _, n := range usecase.PageWindow(h.Page, total) {
		v.Pages = append(v.Pages, PageLink{Number: n, Current: n == h.Page})
	}
	return v
}
