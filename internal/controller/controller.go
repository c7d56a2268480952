// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package controller coordinates the map client: it owns the store, the
// overlay reconcilers, the view-mode multiplexer and the session, and
// drives them in response to user actions and poll refreshes. The
// gateway is consumed through a narrow interface so tests can stand in
// a fake backend.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexus/campusmap/internal/cache"
	"github.com/nexus/campusmap/internal/gateway"
	"github.com/nexus/campusmap/internal/i18n"
	"github.com/nexus/campusmap/internal/imaging"
	"github.com/nexus/campusmap/internal/model"
	"github.com/nexus/campusmap/internal/overlay"
	"github.com/nexus/campusmap/internal/policy"
	"github.com/nexus/campusmap/internal/session"
	"github.com/nexus/campusmap/internal/store"
	"github.com/nexus/campusmap/internal/view"
)

// API is the slice of the gateway client the controller uses.
type API interface {
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	ListBuildings(ctx context.Context) ([]model.Building, error)
	CreateEvent(ctx context.Context, draft gateway.EventDraft) (*gateway.CreateEventResult, error)
	UpdateEvent(ctx context.Context, id int64, draft gateway.EventDraft) error
	DeleteEvent(ctx context.Context, id int64) error
	ListComments(ctx context.Context, eventID int64) ([]model.Comment, error)
	AddComment(ctx context.Context, eventID int64, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	Like(ctx context.Context, eventID int64) (int, error)
	Translate(ctx context.Context, req gateway.TranslateRequest) (*gateway.TranslateResult, error)
	PendingEvents(ctx context.Context) ([]model.Event, error)
	ApproveEvent(ctx context.Context, eventID int64) error
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserRole(ctx context.Context, userID int64, role model.Role) error
	SetToken(token string)
	ClearToken()
}

// Assistant answers campus questions grounded in the building
// directory. Optional; wired in after provider configuration succeeds.
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Errors surfaced by controller operations.
var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrNotPermitted  = errors.New("not permitted")
	ErrNoDetailOpen  = errors.New("no detail view open")
	ErrEventNotFound = errors.New("event not found")
	ErrNoPosition    = errors.New("no position selected")
	ErrNoAssistant   = errors.New("assistant not configured")
)

// Detail is the state of the open event detail view.
type Detail struct {
	EventID     int64
	Title       string
	Description string

	// BodyHTML is the rendered, sanitized description. Populated by
	// enrichment; holds the original-language rendering until a
	// translation lands.
	BodyHTML string

	Comments []model.Comment

	// Likes mirrors the store's count so the open view tracks
	// optimistic increments and rollbacks without a re-render pass.
	Likes int

	// Translated reports whether Title/Description carry translated text.
	Translated bool

	seq uint64
}

// Options wires a Controller.
type Options struct {
	API          API
	Store        *store.Store
	Sessions     *session.Manager
	Widget       overlay.Widget
	Surface      overlay.Surface
	Translations *cache.TranslationCache
	Policy       policy.Policy
	Language     string
	Logger       *slog.Logger

	// UploadsDir, when set, receives a local copy of every prepared
	// image submission.
	UploadsDir string
}

// Controller is the central coordinator. Public methods are safe for
// concurrent use; enrichment goroutines re-enter through seq-guarded
// apply methods.
type Controller struct {
	api          API
	store        *store.Store
	sessions     *session.Manager
	surface      overlay.Surface
	translations *cache.TranslationCache
	policy       policy.Policy
	content      *overlay.ContentBuilder
	events       *overlay.Reconciler
	buildings    *overlay.Reconciler
	processor    *imaging.Processor
	uploadsDir   string
	logger       *slog.Logger

	mu              sync.Mutex
	mux             *view.Multiplexer
	eventHandles    map[int64]overlay.Handle
	buildingHandles map[int64]overlay.Handle
	language        string
	detail          *Detail
	detailSeq       uint64
	selectedBldg    *model.Building
	addMode         bool
	pendingPos      *model.Position
	assistant       Assistant
}

// New creates a Controller. It does not touch the network; call
// Initialize to restore the session and load data.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lang := opts.Language
	if !i18n.IsSupported(lang) {
		lang = i18n.MatchLanguage(lang)
	}
	c := &Controller{
		api:             opts.API,
		store:           opts.Store,
		sessions:        opts.Sessions,
		surface:         opts.Surface,
		translations:    opts.Translations,
		policy:          opts.Policy,
		content:         overlay.NewContentBuilder(),
		events:          overlay.NewReconciler(opts.Widget, logger),
		buildings:       overlay.NewReconciler(opts.Widget, logger),
		processor:       imaging.NewProcessor(),
		uploadsDir:      opts.UploadsDir,
		logger:          logger,
		eventHandles:    make(map[int64]overlay.Handle),
		buildingHandles: make(map[int64]overlay.Handle),
		language:        lang,
	}
	c.mux = view.New(c.applyTransition)
	return c
}

// Initialize restores the persisted session and performs the initial
// data load: buildings once, events for the first time. Building view
// is active afterwards, so building overlays attach and event overlays
// are built detached.
func (c *Controller) Initialize(ctx context.Context) error {
	if c.sessions != nil {
		state, err := c.sessions.Load()
		if err != nil {
			return fmt.Errorf("restoring session: %w", err)
		}
		if i18n.IsSupported(state.Language) {
			c.mu.Lock()
			c.language = state.Language
			c.mu.Unlock()
		}
		if state.LoggedIn() {
			c.api.SetToken(state.Token)
			c.store.SetUser(state.User)
			c.logger.Info("session restored", "user", state.User.Name, "role", state.User.Role)
		}
	}

	buildings, err := c.api.ListBuildings(ctx)
	if err != nil {
		return fmt.Errorf("loading buildings: %w", err)
	}
	c.store.ReplaceBuildings(buildings)

	if err := c.RefreshEvents(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcileBuildingsLocked()
	return nil
}

// Refresh re-fetches the event collection and reconciles overlays. The
// poller calls this on schedule; event state changed by other users is
// only observed here.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.RefreshEvents(ctx)
}

// RefreshEvents re-fetches events, swaps the store collection and
// reconciles the event overlay group against the new visible set.
func (c *Controller) RefreshEvents(ctx context.Context) error {
	events, err := c.api.ListEvents(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("session expired during refresh")
		}
		return fmt.Errorf("refreshing events: %w", err)
	}
	c.store.ReplaceEvents(events)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcileEventsLocked()
	return nil
}

// reconcileEventsLocked diffs the visible event set against live
// handles. The event group is attached only in Events mode; in other
// modes new overlays are constructed detached so a later mode switch
// only needs to attach them.
func (c *Controller) reconcileEventsLocked() {
	user := c.store.User()
	desired := make(map[int64]overlay.Item)
	for _, ev := range c.store.Events() {
		if !c.policy.EventVisible(&ev, user) {
			continue
		}
		pos, _ := ev.Position()
		desired[ev.ID] = overlay.Item{
			ID:   ev.ID,
			Pos:  pos,
			HTML: c.content.EventMarker(&ev),
		}
	}

	var surface overlay.Surface
	if c.mux.Mode() == view.ModeEvents {
		surface = c.surface
	}
	c.eventHandles = c.events.Reconcile(desired, c.eventHandles, surface, c.openDetailAsync)
}

// reconcileBuildingsLocked diffs the building set against live handles.
func (c *Controller) reconcileBuildingsLocked() {
	desired := make(map[int64]overlay.Item)
	for _, b := range c.store.Buildings() {
		if !c.policy.BuildingVisible(&b) {
			continue
		}
		pos, _ := b.Position()
		desired[b.ID] = overlay.Item{
			ID:   b.ID,
			Pos:  pos,
			HTML: c.content.BuildingMarker(&b),
		}
	}

	var surface overlay.Surface
	if c.mux.Mode() == view.ModeBuilding {
		surface = c.surface
	}
	c.buildingHandles = c.buildings.Reconcile(desired, c.buildingHandles, surface, c.selectBuildingAsync)
}

// Mode returns the active view mode.
func (c *Controller) Mode() view.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mux.Mode()
}

// SelectMode switches the active view. Overlay handles survive the
// switch; only attachment changes.
func (c *Controller) SelectMode(mode view.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mux.Select(mode)
}

// DirectionsURL returns the external navigation target for the current
// directions view.
func (c *Controller) DirectionsURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mux.DirectionsURL()
}

// NavigateTo opens directions to a building. Only valid from Building
// view, matching the panel the navigate affordance lives on.
func (c *Controller) NavigateTo(buildingID int64) error {
	b, ok := c.store.Building(buildingID)
	if !ok {
		return fmt.Errorf("building %d: %w", buildingID, ErrEventNotFound)
	}
	pos, ok := b.Position()
	if !ok {
		return fmt.Errorf("building %d has no usable coordinates", buildingID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mux.Navigate(b.Name, pos)
}

// applyTransition attaches and detaches overlay groups on view change.
// Invoked synchronously from mux.Select/Navigate with c.mu held.
func (c *Controller) applyTransition(t view.Transition) {
	switch t.To {
	case view.ModeEvents:
		c.buildings.DetachAll(c.buildingHandles)
		c.events.AttachAll(c.eventHandles, c.surface)
	case view.ModeBuilding:
		c.events.DetachAll(c.eventHandles)
		c.buildings.AttachAll(c.buildingHandles, c.surface)
	case view.ModeDirections:
		c.events.DetachAll(c.eventHandles)
		c.buildings.DetachAll(c.buildingHandles)
	}
	// Leaving Events closes the detail view and abandons its enrichment.
	if t.From == view.ModeEvents && t.To != view.ModeEvents {
		c.closeDetailLocked()
	}
	c.addMode = false
	c.pendingPos = nil
	c.logger.Debug("view changed", "from", t.From.String(), "to", t.To.String())
}

// User returns the session user, or nil when logged out.
func (c *Controller) User() *model.User {
	return c.store.User()
}

// Login authenticates, stores the session user and persists the session.
func (c *Controller) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, token, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.store.SetUser(user)
	if c.sessions != nil {
		c.mu.Lock()
		lang := c.language
		c.mu.Unlock()
		if err := c.sessions.Save(session.State{Token: token, User: user, Language: lang}); err != nil {
			c.logger.Warn("persisting session failed", "error", err)
		}
	}
	c.mu.Lock()
	c.reconcileEventsLocked()
	c.mu.Unlock()
	c.logger.Info("logged in", "user", user.Name, "role", user.Role)
	return user, nil
}

// Logout clears the token, the persisted session and the session user.
func (c *Controller) Logout() {
	c.api.ClearToken()
	c.store.SetUser(nil)
	if c.sessions != nil {
		if err := c.sessions.Clear(); err != nil {
			c.logger.Warn("clearing session failed", "error", err)
		}
	}
	c.mu.Lock()
	c.reconcileEventsLocked()
	c.mu.Unlock()
	c.logger.Info("logged out")
}

// forceLogout handles an authoritative 401: the stored token is dead,
// so the session ends regardless of what the user was doing.
func (c *Controller) forceLogout(reason string) {
	c.logger.Warn("forced logout", "reason", reason)
	c.Logout()
}

// Language returns the active UI language.
func (c *Controller) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// T returns a localized UI string for the active language. The
// embedding layer renders these around the widget (labels, prompts,
// placeholders).
func (c *Controller) T(key string, args ...any) string {
	return i18n.T(c.Language(), key, args...)
}

// DeleteEventPrompt returns the localized confirmation text the UI
// shows before calling DeleteEvent.
func (c *Controller) DeleteEventPrompt(eventID int64) (string, error) {
	ev, ok := c.store.Event(eventID)
	if !ok {
		return "", ErrEventNotFound
	}
	return c.T("detail.delete_check", ev.Title), nil
}

// SetLanguage switches the UI language and persists the preference. An
// open detail view is re-enriched for the new target language. Only
// catalog languages are accepted.
func (c *Controller) SetLanguage(lang string) error {
	if !i18n.IsSupported(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}
	c.mu.Lock()
	c.language = lang
	var reopen int64
	if c.detail != nil {
		reopen = c.detail.EventID
	}
	c.mu.Unlock()

	if c.sessions != nil {
		if err := c.sessions.SetLanguage(lang); err != nil {
			return fmt.Errorf("persisting language: %w", err)
		}
	}
	if reopen != 0 {
		return c.OpenDetail(reopen)
	}
	return nil
}

// EnterAddMode arms map-click capture for a new event's position.
// Requires a session: anonymous users cannot submit events.
func (c *Controller) EnterAddMode() error {
	if c.store.User() == nil {
		return ErrNotLoggedIn
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addMode = true
	c.pendingPos = nil
	return nil
}

// CancelAddMode disarms map-click capture and drops any pending position.
func (c *Controller) CancelAddMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addMode = false
	c.pendingPos = nil
}

// HandleMapClick records a clicked position while add mode is armed.
// Outside add mode map clicks are ignored; marker clicks arrive through
// their own closures, not here.
func (c *Controller) HandleMapClick(pos model.Position) {
	if !pos.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.addMode {
		return
	}
	c.pendingPos = &pos
}

// PendingPosition returns the position captured in add mode, if any.
func (c *Controller) PendingPosition() (model.Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingPos == nil {
		return model.Position{}, false
	}
	return *c.pendingPos, true
}

// SetPendingPosition prefills the add-mode position, used when EXIF GPS
// data was extracted from an attached photo.
func (c *Controller) SetPendingPosition(pos model.Position) error {
	if !pos.Valid() {
		return fmt.Errorf("invalid position (%v, %v)", pos.Lat, pos.Lon)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addMode = true
	c.pendingPos = &pos
	return nil
}

// EventSubmission is the user's input for creating or editing an event.
// Image carries the photo exactly as picked; it is decoded, rotated,
// downscaled and re-encoded before upload.
type EventSubmission struct {
	Title       string
	Description string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Image       io.Reader
}

// prepareImage runs an attached photo through the processor and keeps a
// local copy when an uploads directory is configured. Returns nil when
// no image is attached; undecodable images are a validation failure.
func (c *Controller) prepareImage(sub EventSubmission) (*gateway.Upload, error) {
	if sub.Image == nil {
		return nil, nil
	}
	prep, err := c.processor.PrepareUpload(sub.Image, sub.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrValidation, err)
	}
	if c.uploadsDir != "" {
		if path, err := prep.SaveTo(c.uploadsDir); err != nil {
			c.logger.Warn("local upload copy failed", "error", err)
		} else {
			c.logger.Debug("upload copied", "path", path)
		}
	}
	return &gateway.Upload{
		Filename:    prep.Filename,
		ContentType: prep.ContentType,
		Data:        prep.Data,
	}, nil
}

// PrefillFromPhoto reads EXIF GPS data from a photo and, when present,
// arms add mode at that position so the user only confirms instead of
// clicking the map. Photos without usable coordinates leave add-mode
// state untouched.
func (c *Controller) PrefillFromPhoto(r io.Reader) (model.Position, bool) {
	pos, ok := imaging.ExtractGPS(r)
	if !ok {
		return model.Position{}, false
	}
	if err := c.SetPendingPosition(pos); err != nil {
		return model.Position{}, false
	}
	return pos, true
}

// CreateEvent submits a new event at the pending add-mode position. The
// server decides the approval state; pending submissions do not appear
// on the shared map until approved, so the overlay set is refreshed
// rather than optimistically extended.
func (c *Controller) CreateEvent(ctx context.Context, sub EventSubmission) (*gateway.CreateEventResult, error) {
	user := c.store.User()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	pos, ok := c.PendingPosition()
	if !ok {
		return nil, ErrNoPosition
	}
	if sub.Title == "" {
		return nil, fmt.Errorf("%w: title is required", gateway.ErrValidation)
	}
	upload, err := c.prepareImage(sub)
	if err != nil {
		return nil, err
	}

	result, err := c.api.CreateEvent(ctx, gateway.EventDraft{
		Title:       sub.Title,
		Description: sub.Description,
		Lat:         pos.Lat,
		Lon:         pos.Lon,
		StartsAt:    sub.StartsAt,
		EndsAt:      sub.EndsAt,
		Image:       upload,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on event create")
		}
		return nil, err
	}

	c.CancelAddMode()
	c.logger.Info("event submitted",
		"event_id", result.EventID,
		"status", string(result.ApprovalStatus))

	if err := c.RefreshEvents(ctx); err != nil {
		c.logger.Warn("refresh after create failed", "error", err)
	}
	return result, nil
}

// UpdateEvent edits an existing event. Permitted for the creator and
// the elevated editor roles; cached translations for the event go stale
// and are invalidated.
func (c *Controller) UpdateEvent(ctx context.Context, id int64, sub EventSubmission) error {
	ev, ok := c.store.Event(id)
	if !ok {
		return ErrEventNotFound
	}
	if !c.policy.CanEditOrDelete(ev.CreatorName, c.store.User()) {
		return ErrNotPermitted
	}

	upload, err := c.prepareImage(sub)
	if err != nil {
		return err
	}
	draft := gateway.EventDraft{
		Title:       sub.Title,
		Description: sub.Description,
		StartsAt:    sub.StartsAt,
		EndsAt:      sub.EndsAt,
		Image:       upload,
	}
	if pos, ok := ev.Position(); ok {
		draft.Lat = pos.Lat
		draft.Lon = pos.Lon
	}
	if err := c.api.UpdateEvent(ctx, id, draft); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on event update")
		}
		return err
	}

	if c.translations != nil {
		c.mu.Lock()
		lang := c.language
		c.mu.Unlock()
		if err := c.translations.Invalidate(ctx, id, lang); err != nil {
			c.logger.Debug("translation invalidation failed", "event_id", id, "error", err)
		}
	}
	if err := c.RefreshEvents(ctx); err != nil {
		c.logger.Warn("refresh after update failed", "error", err)
	}
	return nil
}

// DeleteEvent removes an event. Permitted for the creator and the
// elevated editor roles. The overlay disappears through reconciliation
// after the store drops the entity.
func (c *Controller) DeleteEvent(ctx context.Context, id int64) error {
	ev, ok := c.store.Event(id)
	if !ok {
		return ErrEventNotFound
	}
	if !c.policy.CanEditOrDelete(ev.CreatorName, c.store.User()) {
		return ErrNotPermitted
	}
	if err := c.api.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on event delete")
		}
		return err
	}

	c.store.RemoveEvent(id)
	c.mu.Lock()
	if c.detail != nil && c.detail.EventID == id {
		c.closeDetailLocked()
	}
	c.reconcileEventsLocked()
	c.mu.Unlock()
	return nil
}

// Like optimistically increments an event's like count, then reconciles
// against the server's authoritative total. On failure the count rolls
// back to the value read before the increment, not a blind decrement,
// so concurrent refreshes cannot double-revert.
func (c *Controller) Like(ctx context.Context, eventID int64) error {
	prev, ok := c.store.Likes(eventID)
	if !ok {
		return ErrEventNotFound
	}
	c.store.AdjustLikes(eventID, 1)
	c.mirrorDetailLikes(eventID, prev+1)

	authoritative, err := c.api.Like(ctx, eventID)
	if err != nil {
		c.store.SetLikes(eventID, prev)
		c.mirrorDetailLikes(eventID, prev)
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on like")
		}
		return err
	}
	c.store.SetLikes(eventID, authoritative)
	c.mirrorDetailLikes(eventID, authoritative)
	return nil
}

// mirrorDetailLikes keeps an open detail view's like count in step with
// the store.
func (c *Controller) mirrorDetailLikes(eventID int64, likes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail != nil && c.detail.EventID == eventID {
		c.detail.Likes = likes
	}
}

// AddComment optimistically appends a comment tagged with a local id,
// then replaces it with the server-confirmed entry. On rejection the
// local entry is dropped; a 401 additionally ends the session.
func (c *Controller) AddComment(ctx context.Context, eventID int64, content string) error {
	user := c.store.User()
	if user == nil {
		return ErrNotLoggedIn
	}
	if content == "" {
		return fmt.Errorf("%w: comment is empty", gateway.ErrValidation)
	}
	if _, ok := c.store.Event(eventID); !ok {
		return ErrEventNotFound
	}

	localID := uuid.NewString()
	c.store.AppendComment(eventID, model.Comment{
		EventID:   eventID,
		Content:   content,
		UserName:  user.Name,
		CreatedAt: model.NewLocalTime(time.Now()),
		IsMine:    true,
		LocalID:   localID,
	})
	c.refreshDetailComments(eventID)

	confirmed, err := c.api.AddComment(ctx, eventID, content)
	if err != nil {
		c.store.DropLocalComment(eventID, localID)
		c.refreshDetailComments(eventID)
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on comment")
		}
		return err
	}
	confirmed.IsMine = true
	c.store.ConfirmComment(eventID, localID, *confirmed)
	c.refreshDetailComments(eventID)
	return nil
}

// DeleteComment removes a confirmed comment. Permitted for the author
// and the elevated editor roles.
func (c *Controller) DeleteComment(ctx context.Context, eventID, commentID int64) error {
	var target *model.Comment
	for _, cm := range c.store.Comments(eventID) {
		if cm.Confirmed() && cm.ID == commentID {
			found := cm
			target = &found
			break
		}
	}
	if target == nil {
		return fmt.Errorf("comment %d: %w", commentID, ErrEventNotFound)
	}
	if !c.policy.CanEditOrDelete(target.UserName, c.store.User()) {
		return ErrNotPermitted
	}
	if err := c.api.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on comment delete")
		}
		return err
	}
	c.store.RemoveComment(eventID, commentID)
	c.refreshDetailComments(eventID)
	return nil
}

// PendingEvents returns the moderation queue. Moderator roles only.
func (c *Controller) PendingEvents(ctx context.Context) ([]model.Event, error) {
	if !c.policy.CanModerate(c.store.User()) {
		return nil, ErrNotPermitted
	}
	events, err := c.api.PendingEvents(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on pending list")
		}
		return nil, err
	}
	return events, nil
}

// ApproveEvent approves a pending event and refreshes so the newly
// approved entity reaches the shared map.
func (c *Controller) ApproveEvent(ctx context.Context, eventID int64) error {
	if !c.policy.CanModerate(c.store.User()) {
		return ErrNotPermitted
	}
	if err := c.api.ApproveEvent(ctx, eventID); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on approve")
		}
		return err
	}
	c.logger.Info("event approved", "event_id", eventID)
	return c.RefreshEvents(ctx)
}

// ListUsers fetches the registered users for the admin user table.
func (c *Controller) ListUsers(ctx context.Context) ([]model.User, error) {
	if !c.policy.CanModerate(c.store.User()) {
		return nil, ErrNotPermitted
	}
	users, err := c.api.ListUsers(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on user list")
		}
		return nil, err
	}
	return users, nil
}

// SetUserRole changes another user's authorization level. Changing
// one's own role is rejected so an admin cannot lock themselves out.
func (c *Controller) SetUserRole(ctx context.Context, userID int64, role model.Role) error {
	user := c.store.User()
	if !c.policy.CanModerate(user) {
		return ErrNotPermitted
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", gateway.ErrValidation, role)
	}
	if user.ID == userID {
		return fmt.Errorf("%w: cannot change own role", gateway.ErrValidation)
	}
	if err := c.api.SetUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on role change")
		}
		return err
	}
	c.logger.Info("user role changed", "user_id", userID, "role", string(role))
	return nil
}

// SelectBuilding opens the building info panel.
func (c *Controller) SelectBuilding(id int64) error {
	b, ok := c.store.Building(id)
	if !ok {
		return fmt.Errorf("building %d: %w", id, ErrEventNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedBldg = &b
	if pos, ok := b.Position(); ok && c.surface != nil {
		c.surface.PanTo(pos)
	}
	return nil
}

// SelectedBuilding returns the building open in the info panel, if any.
func (c *Controller) SelectedBuilding() (model.Building, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedBldg == nil {
		return model.Building{}, false
	}
	return *c.selectedBldg, true
}

// SearchBuildings filters buildings by name for the search box.
func (c *Controller) SearchBuildings(query string) []model.Building {
	return c.store.SearchBuildings(query)
}

// ScheduleFor returns the events on a given day for the schedule panel.
func (c *Controller) ScheduleFor(day time.Time) []model.Event {
	return c.store.EventsOn(day)
}

// CanEditEvent reports whether the current user may edit or delete the
// event, for gating the affordances in the detail view.
func (c *Controller) CanEditEvent(eventID int64) bool {
	ev, ok := c.store.Event(eventID)
	if !ok {
		return false
	}
	return c.policy.CanEditOrDelete(ev.CreatorName, c.store.User())
}

// CanModerate reports whether the moderation surface is available.
func (c *Controller) CanModerate() bool {
	return c.policy.CanModerate(c.store.User())
}

// SetAssistant attaches the campus question helper. Safe to call after
// Initialize; passing nil detaches it.
func (c *Controller) SetAssistant(a Assistant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assistant = a
}

// Ask forwards a campus question to the configured assistant.
func (c *Controller) Ask(ctx context.Context, question string) (string, error) {
	c.mu.Lock()
	a := c.assistant
	c.mu.Unlock()
	if a == nil {
		return "", ErrNoAssistant
	}
	return a.Ask(ctx, question)
}

// OverlayStats exposes reconciler work counters for diagnostics.
func (c *Controller) OverlayStats() (events, buildings overlay.Stats) {
	return c.events.Stats(), c.buildings.Stats()
}

// selectBuildingAsync adapts SelectBuilding to the overlay click
// signature. Click closures fire from outside the lock.
func (c *Controller) selectBuildingAsync(id int64) {
	if err := c.SelectBuilding(id); err != nil {
		c.logger.Warn("building select failed", "building_id", id, "error", err)
	}
}

// openDetailAsync adapts OpenDetail to the overlay click signature.
func (c *Controller) openDetailAsync(id int64) {
	if err := c.OpenDetail(id); err != nil {
		c.logger.Warn("detail open failed", "event_id", id, "error", err)
	}
}
