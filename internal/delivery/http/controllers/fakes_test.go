package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeEventService implements domain.EventService and records its inputs.
type fakeEventService struct {
	events      []*domain.Event
	public      []*domain.PublicEvent
	event       *domain.Event
	err         error
	gotFilter   domain.EventFilter
	gotCity     string
	gotID       string
	gotInput    domain.EventInput
	gotImage    *domain.ImageUpload
	gotImageLen int
	gotP        domain.Principal
}

func (f *fakeEventService) ListEvents(ctx context.Context, p domain.Principal, filter domain.EventFilter) ([]*domain.Event, error) {
	f.gotP, f.gotFilter = p, filter
	return f.events, f.err
}

func (f *fakeEventService) ListPublicEvents(ctx context.Context, city string) ([]*domain.PublicEvent, error) {
	f.gotCity = city
	return f.public, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, p domain.Principal, id string) (*domain.Event, error) {
	f.gotP, f.gotID = p, id
	return f.event, f.err
}

func (f *fakeEventService) CreateEvent(ctx context.Context, p domain.Principal, in domain.EventInput, image *domain.ImageUpload) (*domain.Event, error) {
	f.gotP, f.gotInput = p, in
	f.recordImage(image)
	if f.err != nil {
		return nil, f.err
	}
	if len(in.Rejected) > 0 {
		return nil, &domain.ValidationError{Errors: in.Rejected}
	}
	return f.event, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, p domain.Principal, id string, in domain.EventInput, image *domain.ImageUpload) (*domain.Event, error) {
	f.gotP, f.gotID, f.gotInput = p, id, in
	f.recordImage(image)
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, p domain.Principal, id string) error {
	f.gotP, f.gotID = p, id
	return f.err
}

func (f *fakeEventService) recordImage(image *domain.ImageUpload) {
	f.gotImage = image
	if image != nil {
		b, _ := io.ReadAll(image.Body)
		f.gotImageLen = len(b)
	}
}

// fakeEncoder writes one line per event.
type fakeEncoder struct{ err error }

func (fakeEncoder) ContentType() string { return "text/calendar; charset=utf-8" }

func (f fakeEncoder) Encode(w io.Writer, events []*domain.PublicEvent) error {
	if f.err != nil {
		return f.err
	}
	for _, e := range events {
		if _, err := io.WriteString(w, "EVENT:"+e.Title+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	user       *domain.User
	token      string
	err        error
	got        []string
	gotProfile domain.ProfileUpdate
}

func (f *fakeAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	f.got = []string{name, email, password}
	return f.user, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.got = []string{email, password}
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	f.got = []string{userID}
	return f.user, f.err
}

func (f *fakeAuthService) UpdateProfile(ctx context.Context, userID string, in domain.ProfileUpdate) (*domain.User, error) {
	f.got, f.gotProfile = []string{userID}, in
	return f.user, f.err
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	f.got = []string{userID, currentPassword, newPassword}
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, email string) error {
	f.got = []string{email}
	return f.err
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	f.got = []string{token, newPassword}
	return f.err
}

func (f *fakeAuthService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	return f.user, f.err
}

// fakeUserService implements domain.UserService.
type fakeUserService struct {
	users     []*domain.User
	total     int
	user      *domain.User
	err       error
	gotParams domain.PaginationParams
	gotActor  domain.Principal
	gotID     string
	gotRole   domain.Role
	gotUpdate domain.UserUpdate
	stats     *domain.UserStats
}

func (f *fakeUserService) ListUsers(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	f.gotParams = params
	return f.users, f.total, f.err
}

func (f *fakeUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	f.gotID = id
	return f.user, f.err
}

func (f *fakeUserService) SetRole(ctx context.Context, actor domain.Principal, id string, role domain.Role) (*domain.User, error) {
	f.gotActor, f.gotID, f.gotRole = actor, id, role
	return f.user, f.err
}

func (f *fakeUserService) UpdateUser(ctx context.Context, actor domain.Principal, id string, in domain.UserUpdate) (*domain.User, error) {
	f.gotActor, f.gotID, f.gotUpdate = actor, id, in
	return f.user, f.err
}

func (f *fakeUserService) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	f.gotActor, f.gotID = actor, id
	return f.err
}

func (f *fakeUserService) ToggleActive(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	f.gotActor, f.gotID = actor, id
	return f.user, f.err
}

func (f *fakeUserService) Stats(ctx context.Context) (*domain.UserStats, error) {
	return f.stats, f.err
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  []domain.FieldError `json:"errors"`
	Count   *int                `json:"count"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func asUser(r *http.Request, p domain.Principal) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), p))
}

var (
	adminP = domain.Principal{UserID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleAdmin}
	userP  = domain.Principal{UserID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleUser}
)
