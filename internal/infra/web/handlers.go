package web

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/infra/logging"
	"parallel-muhit-webapp/internal/infra/web/view"

	"github.com/go-chi/chi/v5"
)

// multipart framing allowance on top of the file itself
const formOverheadBytes = 1 << 20

// apiKeyFrom is the single place the credential is read. It is taken from
// the current URL on every request and never stored.
func apiKeyFrom(r *http.Request) string {
	return r.URL.Query().Get(view.APIKeyParam)
}

func appURL(apiKey string, mount bool) string {
	q := url.Values{}
	if apiKey != "" {
		q.Set(view.APIKeyParam, apiKey)
	}
	if mount {
		q.Set("mount", "1")
	}
	if len(q) == 0 {
		return "/app"
	}
	return "/app?" + q.Encode()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	target := "/app"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleApp renders the current page. A new session is mounted on mount=1,
// without a valid cookie, or when the cookie was minted for another key
// than the one in the URL, including no key at all.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apiKey := apiKeyFrom(r)

	if r.URL.Query().Get("mount") != "1" {
		id, err := s.cookies.SessionFor(r, apiKey)
		if errors.Is(err, errKeyMismatch) {
			logging.With(ctx, s.log).Info().Msg("api key changed, remounting")
		}
		if err == nil {
			sess, err := s.uc.View(ctx, id)
			switch {
			case err == nil:
				s.render(w, r, sess, apiKey)
				return
			case !errors.Is(err, domain.ErrNotFound):
				s.fail(w, r, err)
				return
			}
		}
	}

	sess, err := s.uc.Mount(ctx, apiKey)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.cookies.Mint(w, sess.ID, apiKey); err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, sess, apiKey)
}

func (s *Server) handleOpenHistory(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, apiKey string) error {
		_, err := s.uc.OpenPaymentHistory(r.Context(), id, apiKey)
		return err
	})
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, apiKey string) error {
		n, err := strconv.Atoi(chi.URLParam(r, "page"))
		if err != nil {
			return domain.ErrInvalidArgument
		}
		_, err = s.uc.GoToHistoryPage(r.Context(), id, apiKey, n)
		return err
	})
}

func (s *Server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, _ string) error {
		_, err := s.uc.OpenFAQ(r.Context(), id)
		return err
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, _ string) error {
		_, err := s.uc.Back(r.Context(), id)
		return err
	})
}

func (s *Server) handleAcceptRenewal(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, _ string) error {
		_, err := s.uc.AcceptRenewal(r.Context(), id)
		return err
	})
}

func (s *Server) handleDeclineRenewal(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, _ string) error {
		_, err := s.uc.DeclineRenewal(r.Context(), id)
		return err
	})
}

func (s *Server) handleChooseFile(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, _ string) error {
		file, err := s.readReceipt(w, r)
		if err != nil {
			logging.With(r.Context(), s.log).Info().Err(err).Msg("unreadable receipt form")
		}
		_, err = s.uc.ChooseFile(r.Context(), id, file)
		return err
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, apiKey string) error {
		_, err := s.uc.SubmitReceipt(r.Context(), id, apiKey)
		return err
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(id, _ string) error {
		_, err := s.uc.CancelUpload(r.Context(), id)
		return err
	})
}

// readReceipt reads the payment_check part. One byte past the limit is
// kept so the controller can tell an oversized file apart.
func (s *Server) readReceipt(w http.ResponseWriter, r *http.Request) (*model.ReceiptFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		return nil, err
	}
	f, hdr, err := r.FormFile("payment_check")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	return &model.ReceiptFile{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// act runs one controller action for the cookie's session and redirects
// back to the app. Rejected actions are not errors for the user: the page
// simply shows the unchanged or updated state.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(id, apiKey string) error) {
	apiKey := apiKeyFrom(r)
	id, err := s.cookies.SessionFor(r, apiKey)
	if err != nil {
		http.Redirect(w, r, appURL(apiKey, true), http.StatusSeeOther)
		return
	}
	ctx := logging.WithSessID(r.Context(), id)
	r = r.WithContext(ctx)

	err = fn(id, apiKey)
	switch {
	case err == nil, errors.Is(err, domain.ErrInvalidArgument):
		if err != nil {
			logging.With(ctx, s.log).Debug().Err(err).Msg("action rejected")
		}
		http.Redirect(w, r, appURL(apiKey, false), http.StatusSeeOther)
	case errors.Is(err, domain.ErrNotFound):
		http.Redirect(w, r, appURL(apiKey, true), http.StatusSeeOther)
	default:
		s.fail(w, r, err)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *model.Session, apiKey string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.views.Render(w, sess, apiKey); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrLockBusy) {
		status = http.StatusServiceUnavailable
	}
	logging.With(r.Context(), s.log).Error().Err(err).Int("status", status).Msg("request failed")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = s.views.RenderError(w, domain.MsgErrorGeneric, apiKeyFrom(r))
}
