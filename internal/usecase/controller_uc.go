package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/domain/ports/adapter"
	"parallel-muhit-webapp/internal/domain/ports/repository"
	"parallel-muhit-webapp/internal/infra/logging"
	"parallel-muhit-webapp/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const defaultMaxUploadBytes = 10 << 20

// PageController owns every session's page state. Transitions run under the
// session lock; backend calls run outside it and their results are applied
// only if no newer request for the same slot was started meanwhile.
type PageController struct {
	backend  adapter.BackendClient
	sessions repository.SessionRepository
	locker   repository.Locker
	limiter  adapter.RateLimiter
	log      *zerolog.Logger

	maxUploadBytes int64
	now            func() time.Time
	newID          func() string
}

type Option func(*PageController)

// WithUploadLimits caps receipt size and, when limiter is non-nil,
// throttles submissions per session.
func WithUploadLimits(maxBytes int64, limiter adapter.RateLimiter) Option {
	return func(c *PageController) {
		if maxBytes > 0 {
			c.maxUploadBytes = maxBytes
		}
		c.limiter = limiter
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *PageController) { c.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(c *PageController) { c.newID = gen }
}

func NewPageController(
	backend adapter.BackendClient,
	sessions repository.SessionRepository,
	locker repository.Locker,
	logger *zerolog.Logger,
	opts ...Option,
) *PageController {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &PageController{
		backend:        backend,
		sessions:       sessions,
		locker:         locker,
		log:            logger,
		maxUploadBytes: defaultMaxUploadBytes,
		now:            time.Now,
		newID:          func() string { return ulid.Make().String() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Mount starts a fresh session on the dashboard and loads the profile.
// An empty apiKey fails the profile without contacting the backend.
func (c *PageController) Mount(ctx context.Context, apiKey string) (*model.Session, error) {
	s := model.NewSession(c.newID(), c.now().UTC())
	ctx = logging.WithSessID(ctx, s.ID)
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "PageController.Mount")()

	if apiKey == "" {
		s.Profile = model.ProfileStateFailed(domain.KindMissingCredential)
		metrics.IncBackendSkipped("profile")
		if err := c.sessions.Save(ctx, s); err != nil {
			return nil, err
		}
		log.Info().Msg("mounted without credential")
		return s, nil
	}

	seq := s.Begin(model.SlotProfile)
	s.Profile = model.ProfileStateLoading()
	if err := c.sessions.Save(ctx, s); err != nil {
		return nil, err
	}

	profile, ferr := c.backend.GetProfile(ctx, apiKey)
	out, err := c.update(ctx, s.ID, func(s *model.Session) error {
		if !c.current(ctx, s, model.SlotProfile, seq) {
			return nil
		}
		if ferr != nil {
			s.Profile = model.ProfileStateFailed(domain.KindOf(ferr))
			return nil
		}
		s.Profile = model.ProfileStateLoaded(*profile)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ferr != nil {
		log.Warn().Err(ferr).Str("kind", string(domain.KindOf(ferr))).Msg("profile load failed")
	} else {
		log.Info().
			Str("api_key", logging.Redact(apiKey, false)).
			Bool("subscribed", profile.IsSubscribed).
			Int("rest_of_days", profile.RestOfDays).
			Msg("mounted")
	}
	return out, nil
}

// View returns the session for rendering. It never mutates state.
func (c *PageController) View(ctx context.Context, id string) (*model.Session, error) {
	return c.sessions.Get(ctx, id)
}

// OpenPaymentHistory switches to the history page and loads page 1.
func (c *PageController) OpenPaymentHistory(ctx context.Context, id, apiKey string) (*model.Session, error) {
	if _, err := c.update(ctx, id, func(s *model.Session) error {
		c.navigate(s, model.PagePaymentHistory)
		s.History.Page = 1
		return nil
	}); err != nil {
		return nil, err
	}
	return c.fetchHistory(ctx, id, apiKey, 1)
}

// GoToHistoryPage loads page n. Pages are re-fetched on every visit.
func (c *PageController) GoToHistoryPage(ctx context.Context, id, apiKey string, n int) (*model.Session, error) {
	if _, err := c.update(ctx, id, func(s *model.Session) error {
		if s.Page != model.PagePaymentHistory {
			return fmt.Errorf("%w: history is not open", domain.ErrInvalidArgument)
		}
		total := s.History.TotalPages()
		if n < 1 || (total > 0 && n > total) {
			return fmt.Errorf("%w: page %d out of range [1,%d]", domain.ErrInvalidArgument, n, total)
		}
		s.History.Page = n
		return nil
	}); err != nil {
		return nil, err
	}
	return c.fetchHistory(ctx, id, apiKey, n)
}

func (c *PageController) fetchHistory(ctx context.Context, id, apiKey string, page int) (*model.Session, error) {
	ctx = logging.WithSessID(ctx, id)
	log := logging.With(ctx, c.log)

	// Without a key there is nothing to show and nothing to report.
	if apiKey == "" {
		metrics.IncBackendSkipped("history")
		return c.sessions.Get(ctx, id)
	}

	var seq uint64
	if _, err := c.update(ctx, id, func(s *model.Session) error {
		seq = s.Begin(model.SlotHistory)
		s.History.Loading = true
		return nil
	}); err != nil {
		return nil, err
	}

	res, ferr := c.backend.GetTransactionHistory(ctx, apiKey, page)
	if ferr != nil {
		log.Warn().Err(ferr).Int("page", page).Msg("history load failed")
	}
	return c.update(ctx, id, func(s *model.Session) error {
		if !c.current(ctx, s, model.SlotHistory, seq) {
			return nil
		}
		s.History.Loading = false
		if ferr != nil {
			s.History.Results = nil
			return nil
		}
		s.History.Count = res.Count
		s.History.Results = res.Results
		return nil
	})
}

// OpenFAQ shows the FAQ page. The list is fetched once per session and a
// failed fetch leaves it empty without any message.
func (c *PageController) OpenFAQ(ctx context.Context, id string) (*model.Session, error) {
	ctx = logging.WithSessID(ctx, id)
	log := logging.With(ctx, c.log)

	var (
		seq  uint64
		need bool
	)
	s, err := c.update(ctx, id, func(s *model.Session) error {
		c.navigate(s, model.PageFAQ)
		if len(s.FAQs) == 0 {
			need = true
			seq = s.Begin(model.SlotFAQ)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !need {
		metrics.IncCacheRequest("faq", "hit")
		return s, nil
	}
	metrics.IncCacheRequest("faq", "miss")

	faqs, ferr := c.backend.GetFAQs(ctx)
	if ferr != nil {
		log.Warn().Err(ferr).Msg("faq load failed")
	}
	return c.update(ctx, id, func(s *model.Session) error {
		if ferr != nil || !c.current(ctx, s, model.SlotFAQ, seq) {
			return nil
		}
		s.FAQs = faqs
		return nil
	})
}

// Back returns to the dashboard. Nothing else is reset.
func (c *PageController) Back(ctx context.Context, id string) (*model.Session, error) {
	return c.update(ctx, id, func(s *model.Session) error {
		c.navigate(s, model.PageDashboard)
		return nil
	})
}

// AcceptRenewal reveals the receipt picker.
func (c *PageController) AcceptRenewal(ctx context.Context, id string) (*model.Session, error) {
	return c.update(ctx, id, func(s *model.Session) error {
		if err := requireRenewal(s); err != nil {
			return err
		}
		if s.Upload.Status == model.UploadIdle {
			s.Upload = model.UploadStatePickerShown()
		}
		return nil
	})
}

// DeclineRenewal collapses the picker. No request is sent.
func (c *PageController) DeclineRenewal(ctx context.Context, id string) (*model.Session, error) {
	return c.resetUpload(ctx, id)
}

// CancelUpload returns the upload flow to idle from any point. An upload
// still in flight is ignored when it completes.
func (c *PageController) CancelUpload(ctx context.Context, id string) (*model.Session, error) {
	return c.resetUpload(ctx, id)
}

func (c *PageController) resetUpload(ctx context.Context, id string) (*model.Session, error) {
	return c.update(ctx, id, func(s *model.Session) error {
		if err := requireRenewal(s); err != nil {
			return err
		}
		s.Begin(model.SlotUpload)
		s.Upload = model.UploadStateIdle()
		return nil
	})
}

// ChooseFile records the picked receipt. Non-images and files over the size
// limit are rejected with ErrInvalidArgument and a message in the upload
// state; the user may pick again.
func (c *PageController) ChooseFile(ctx context.Context, id string, file *model.ReceiptFile) (*model.Session, error) {
	var rejected error
	s, err := c.update(ctx, id, func(s *model.Session) error {
		if err := requireRenewal(s); err != nil {
			return err
		}
		if s.Upload.Status == model.UploadSubmitting {
			return fmt.Errorf("%w: upload in progress", domain.ErrInvalidArgument)
		}
		if key, err := c.checkReceipt(file); err != nil {
			s.Upload = model.UploadStateDone(model.UploadResult{MessageKey: key})
			rejected = err
			return nil
		}
		s.Upload = model.UploadStateFileChosen(file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rejected != nil {
		logging.With(logging.WithSessID(ctx, id), c.log).Info().Err(rejected).Msg("receipt rejected")
		return s, rejected
	}
	return s, nil
}

func (c *PageController) checkReceipt(file *model.ReceiptFile) (string, error) {
	if file == nil || file.Size() == 0 {
		return domain.MsgUploadNotImage, fmt.Errorf("%w: empty file", domain.ErrInvalidArgument)
	}
	if int64(file.Size()) > c.maxUploadBytes {
		return domain.MsgUploadTooLarge, fmt.Errorf("%w: file is %d bytes", domain.ErrInvalidArgument, file.Size())
	}
	// The sniffer knows no HEIC/HEIF, so only a positive non-image match
	// overrides the declared type.
	sniffed := http.DetectContentType(file.Data)
	if !isImage(file.ContentType) || (!isImage(sniffed) && sniffed != unknownContentType) {
		return domain.MsgUploadNotImage, fmt.Errorf("%w: content type %q (sniffed %q)", domain.ErrInvalidArgument, file.ContentType, sniffed)
	}
	return "", nil
}

const unknownContentType = "application/octet-stream"

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

// SubmitReceipt uploads the chosen file. Without a chosen file it fails with
// ErrInvalidArgument and makes no request.
func (c *PageController) SubmitReceipt(ctx context.Context, id, apiKey string) (*model.Session, error) {
	ctx = logging.WithSessID(ctx, id)
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "PageController.SubmitReceipt")()

	var (
		seq  uint64
		file *model.ReceiptFile
	)
	if _, err := c.update(ctx, id, func(s *model.Session) error {
		if err := requireRenewal(s); err != nil {
			return err
		}
		if !s.Upload.CanSubmit() {
			return fmt.Errorf("%w: no file chosen", domain.ErrInvalidArgument)
		}
		file = s.Upload.File
		seq = s.Begin(model.SlotUpload)
		s.Upload = model.UploadStateSubmitting(file)
		return nil
	}); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		ok, lerr := c.limiter.Allow(ctx, "upload:"+id)
		if lerr != nil {
			log.Error().Err(lerr).Msg("rate limiter unavailable")
		}
		if lerr == nil && !ok {
			metrics.IncUploadRateLimited()
			log.Warn().Msg("receipt upload rate limited")
			return c.finishUpload(ctx, id, seq, file, model.UploadResult{MessageKey: domain.MsgRateLimited})
		}
	}

	res, uerr := c.backend.UploadPaymentReceipt(ctx, apiKey, file)
	result := uploadOutcome(res, uerr)
	if uerr != nil {
		log.Warn().Err(uerr).Str("kind", string(domain.KindOf(uerr))).Msg("receipt upload failed")
		if domain.KindOf(uerr) == domain.KindValidation {
			metrics.IncReceiptUpload("rejected")
		} else {
			metrics.IncReceiptUpload("failed")
		}
	} else {
		log.Info().Int("size", file.Size()).Msg("receipt uploaded")
		metrics.IncReceiptUpload("succeeded")
	}
	return c.finishUpload(ctx, id, seq, file, result)
}

// finishUpload applies the outcome. Success clears the file; a failure keeps
// it so the user can resubmit without picking it again.
func (c *PageController) finishUpload(ctx context.Context, id string, seq uint64, file *model.ReceiptFile, r model.UploadResult) (*model.Session, error) {
	return c.update(ctx, id, func(s *model.Session) error {
		if !c.current(ctx, s, model.SlotUpload, seq) {
			return nil
		}
		if r.OK {
			s.Upload = model.UploadStateDone(r)
		} else {
			s.Upload = model.UploadStateFailed(file, r)
		}
		return nil
	})
}

// uploadOutcome maps a backend reply to what the user sees. A validation
// error with a server message is shown verbatim.
func uploadOutcome(res *model.UploadResult, err error) model.UploadResult {
	if err == nil {
		out := model.UploadResult{OK: true, MessageKey: domain.MsgUploadSuccess}
		if res != nil && res.Message != "" {
			out.Message = res.Message
		}
		return out
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Message != "" {
		return model.UploadResult{Message: verr.Message}
	}
	return model.UploadResult{MessageKey: domain.MessageFor(domain.UploadMessages, domain.KindOf(err))}
}

func requireRenewal(s *model.Session) error {
	if !s.Profile.NeedsRenewal() {
		return fmt.Errorf("%w: renewal is not offered", domain.ErrInvalidArgument)
	}
	return nil
}

func (c *PageController) navigate(s *model.Session, to model.PageState) {
	if s.Page != to {
		metrics.IncPageTransition(string(to))
	}
	s.Page = to
}

func (c *PageController) current(ctx context.Context, s *model.Session, slot model.Slot, seq uint64) bool {
	if s.Current(slot, seq) {
		return true
	}
	metrics.IncStaleResponse(string(slot))
	logging.With(ctx, c.log).Debug().Str("slot", string(slot)).Uint64("seq", seq).Msg("stale response dropped")
	return false
}

// update loads the session, applies fn and saves it, all under the session
// lock. fn returning an error leaves the stored session untouched.
func (c *PageController) update(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error) {
	unlock, err := c.locker.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}
