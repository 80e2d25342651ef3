package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/infra/logging"
	red "digital-menu-platform/internal/infra/redis"
	"digital-menu-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ThemePublisher fans theme changes out to open storefront pages.
type ThemePublisher interface {
	Publish(ctx context.Context, ev red.ThemeEvent) error
	Subscribe(ctx context.Context, slug string) (<-chan red.ThemeEvent, func() error)
}

// Limiter throttles claim and verify attempts.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Options carries the server's wiring knobs.
type Options struct {
	JWTSecret      string
	RequestTimeout time.Duration
	ClaimPerMinute int
}

// Server is the HTTP layer over the use cases.
type Server struct {
	menus     usecase.MenuUseCase
	items     usecase.ItemUseCase
	coupons   usecase.CouponUseCase
	claims    usecase.ClaimUseCase
	developer usecase.DeveloperUseCase
	themes    ThemePublisher
	limiter   Limiter
	opts      Options
	log       *zerolog.Logger
}

func NewServer(
	menus usecase.MenuUseCase,
	items usecase.ItemUseCase,
	coupons usecase.CouponUseCase,
	claims usecase.ClaimUseCase,
	developer usecase.DeveloperUseCase,
	themes ThemePublisher,
	limiter Limiter,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.ClaimPerMinute <= 0 {
		opts.ClaimPerMinute = 10
	}
	return &Server{
		menus:     menus,
		items:     items,
		coupons:   coupons,
		claims:    claims,
		developer: developer,
		themes:    themes,
		limiter:   limiter,
		opts:      opts,
		log:       logger,
	}
}

// Router builds the full route tree with middleware attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(TraceID(s.log))
	r.Use(RequestLog(s.log))
	r.Use(Session(s.opts.JWTSecret))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// The SSE stream lives outside the timed group; everything else gets
		// the per-request deadline.
		r.Get("/menu/{slug}/events", s.handleThemeEvents)

		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.opts.RequestTimeout))

			r.With(RequireSession).Post("/menu", s.handleMenuCreate)
			r.Get("/menu/{slug}", s.handleMenuGet)
			r.With(RequireSession).Put("/menu/{slug}", s.handleMenuUpdate)
			r.With(RequireSession).Delete("/menu/{slug}", s.handleMenuDelete)
			r.Get("/menu/{slug}/items", s.handleItemList)
			r.With(RequireSession).Post("/menu/{slug}/items", s.handleItemCreate)
			r.With(RequireSession).Post("/menu/{slug}/items/bulk", s.handleItemBulkUpsert)
			r.Get("/menu/{slug}/categories", s.handleCategories)

			r.With(s.claimThrottle).Post("/verify-claim-code", s.handleVerifyClaimCode)
			r.With(RequireSession, s.claimThrottle).Post("/claim-shop", s.handleClaimShop)
			r.With(RequireSession).Post("/coupons/redeem", s.handleCouponRedeem)

			r.Route("/developer", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/coupons", s.handleCouponCreate)
				r.Post("/create-readymade-shop", s.handleReadymadeCreate)
				r.Get("/shops", s.handleReadymadeList)
				r.Delete("/shops/{slug}", s.handleReadymadeDelete)
			})
		})
	})
	return r
}

// claimThrottle rate-limits claim and verify attempts per caller. Redis
// hiccups fail open; a lost window is better than a dead claim flow.
func (s *Server) claimThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := r.RemoteAddr
		if id, ok := IdentityFrom(r.Context()); ok {
			caller = id.UserID
		}
		allowed, err := s.limiter.Allow(r.Context(), red.ClaimKey(caller), s.opts.ClaimPerMinute, time.Minute)
		if err != nil {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
			allowed = true
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "too many attempts, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------------- wire types ----------------

type menuJSON struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Theme       string `json:"theme"`
	LogoURL     string `json:"logo_url,omitempty"`
	Currency    string `json:"currency"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	IsReadymade bool   `json:"is_readymade"`
}

func toMenuJSON(m *model.Menu) menuJSON {
	return menuJSON{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Description: m.Description,
		Theme:       m.Theme,
		LogoURL:     m.LogoURL,
		Currency:    m.Currency,
		Phone:       m.Phone,
		Address:     m.Address,
		IsReadymade: m.IsReadymade,
	}
}

type itemJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	OfferPrice  *int64 `json:"offer_price,omitempty"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

func toItemJSON(it *model.MenuItem) itemJSON {
	return itemJSON{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		OfferPrice:  it.OfferPrice,
		Category:    it.Category,
		ImageURL:    it.ImageURL,
		IsAvailable: it.IsAvailable,
	}
}

type itemInputJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	OfferPrice  *int64 `json:"offer_price"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

func (in itemInputJSON) toInput() usecase.ItemInput {
	return usecase.ItemInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		OfferPrice:  in.OfferPrice,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	}
}

// ---------------- shop profile ----------------

func (s *Server) handleMenuCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug        string `json:"slug"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Theme       string `json:"theme"`
		LogoURL     string `json:"logo_url"`
		Currency    string `json:"currency"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, _ := IdentityFrom(r.Context())
	m, err := s.menus.Create(r.Context(), id.UserID, usecase.MenuInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		LogoURL:     req.LogoURL,
		Currency:    req.Currency,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuJSON(m))
}

func (s *Server) handleMenuGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.menus.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuJSON(m))
}

func (s *Server) handleMenuUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Theme       *string `json:"theme"`
		LogoURL     *string `json:"logo_url"`
		Currency    *string `json:"currency"`
		Phone       *string `json:"phone"`
		Address     *string `json:"address"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, _ := IdentityFrom(r.Context())
	slug := chi.URLParam(r, "slug")
	m, themeChanged, err := s.menus.Update(r.Context(), id.UserID, slug, usecase.MenuUpdate{
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		LogoURL:     req.LogoURL,
		Currency:    req.Currency,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if themeChanged {
		_ = s.themes.Publish(r.Context(), red.ThemeEvent{Slug: m.Slug, Theme: m.Theme})
	}
	writeJSON(w, http.StatusOK, toMenuJSON(m))
}

func (s *Server) handleMenuDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	if err := s.menus.Delete(r.Context(), id.UserID, chi.URLParam(r, "slug")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- items ----------------

func (s *Server) handleItemList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := parseInt(q.Get("page"))
	pageSize, _ := parseInt(q.Get("page_size"))
	res, err := s.items.List(r.Context(), chi.URLParam(r, "slug"), usecase.ListQuery{
		Page:     page,
		PageSize: pageSize,
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]itemJSON, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, toItemJSON(it))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"total":    res.Total,
		"page":     res.Page,
		"has_more": res.HasMore,
	})
}

func (s *Server) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	var req itemInputJSON
	if !decodeBody(w, r, &req) {
		return
	}
	id, _ := IdentityFrom(r.Context())
	it, err := s.items.Create(r.Context(), id.UserID, chi.URLParam(r, "slug"), req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemJSON(it))
}

func (s *Server) handleItemBulkUpsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []itemInputJSON `json:"items"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rows := make([]usecase.ItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		rows = append(rows, in.toInput())
	}
	id, _ := IdentityFrom(r.Context())
	res, err := s.items.BulkUpsert(r.Context(), id.UserID, chi.URLParam(r, "slug"), rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"inserted": res.Inserted,
		"updated":  res.Updated,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.items.Categories(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": cats})
}

// handleThemeEvents streams theme changes for one storefront as SSE.
func (s *Server) handleThemeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	slug := chi.URLParam(r, "slug")
	if _, err := s.menus.GetBySlug(r.Context(), slug); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, closeSub := s.themes.Subscribe(r.Context(), slug)
	defer func() { _ = closeSub() }()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: theme\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// ---------------- claim flow ----------------

func (s *Server) handleVerifyClaimCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	valid, err := s.claims.VerifyCode(r.Context(), req.Slug, req.Code)
	if err != nil {
		// An unknown slug answers like a wrong code, so callers cannot probe
		// which shops exist.
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (s *Server) handleClaimShop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, _ := IdentityFrom(r.Context())
	res, err := s.claims.Claim(r.Context(), id.UserID, req.Slug, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body := map[string]interface{}{
		"menu":            toMenuJSON(res.Menu),
		"coupon_redeemed": res.CouponRedeemed,
	}
	if res.Plan != nil {
		body["plan"] = *res.Plan
	}
	if res.ExpiresAt != nil {
		body["subscription_expires_at"] = res.ExpiresAt
	}
	writeJSON(w, http.StatusOK, body)
}

// ---------------- coupons ----------------

func (s *Server) handleCouponRedeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, _ := IdentityFrom(r.Context())
	u, err := s.coupons.Redeem(r.Context(), id.UserID, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body := map[string]interface{}{"is_subscribed": u.IsSubscribed}
	if u.SubscriptionPlan != nil {
		body["plan"] = *u.SubscriptionPlan
	}
	if u.SubscriptionExpiresAt != nil {
		body["subscription_expires_at"] = u.SubscriptionExpiresAt
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCouponCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan           string `json:"plan"`
		DurationMonths int    `json:"duration_months"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.coupons.Create(r.Context(), model.SubscriptionPlan(req.Plan), req.DurationMonths)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"code":            c.Code,
		"plan":            c.Plan,
		"duration_months": c.DurationMonths,
	})
}

// ---------------- developer ----------------

func (s *Server) handleReadymadeCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug        string          `json:"slug"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Theme       string          `json:"theme"`
		Items       []itemInputJSON `json:"items"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	items := make([]usecase.ItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, in.toInput())
	}
	shop, err := s.developer.CreateReadymadeShop(r.Context(), usecase.ReadymadeInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		Items:       items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"menu":       toMenuJSON(shop.Menu),
		"claim_code": shop.ClaimCode,
	})
}

func (s *Server) handleReadymadeList(w http.ResponseWriter, r *http.Request) {
	shops, err := s.developer.ListShops(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(shops))
	for _, shop := range shops {
		out = append(out, map[string]interface{}{
			"menu":       toMenuJSON(shop.Menu),
			"item_count": shop.ItemCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"shops": out})
}

func (s *Server) handleReadymadeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.developer.DeleteShop(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- plumbing ----------------

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "missing request body")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func parseInt(s string) (int, error) {
	var n int
	if s == "" {
		return 0, nil
	}
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrNotReadymade),
		errors.Is(err, domain.ErrCouponRedeemed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
