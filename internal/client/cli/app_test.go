package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/samplekeeper/internal/client/config"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/logging"
	"github.com/dmitrijs2005/samplekeeper/internal/testutil/fakeapi"
)

type harness struct {
	t   *testing.T
	srv *fakeapi.Server
	cfg *config.Config
}

func newHarness(t *testing.T, opts ...fakeapi.Option) *harness {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	srv, err := fakeapi.New(opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	_, err = srv.AddUser("alice", "password123", "alice@example.org", "Alice", "Smith")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = ts.URL + fakeapi.BasePath
	cfg.DatabasePath = filepath.Join(t.TempDir(), "session.db")

	return &harness{t: t, srv: srv, cfg: cfg}
}

// run executes one REPL session fed with lines and returns its output.
func (h *harness) run(lines ...string) string {
	h.t.Helper()

	var out bytes.Buffer
	app, err := NewApp(context.Background(), h.cfg,
		WithInput(strings.NewReader(strings.Join(lines, "\n")+"\n")),
		WithOutput(&out),
		WithLogger(logging.Nop()),
	)
	require.NoError(h.t, err)
	defer app.Close()

	require.NoError(h.t, app.Run(context.Background()))
	return out.String()
}

func TestApp_LoginFailure(t *testing.T) {
	h := newHarness(t)

	out := h.run("login alice", "wrong", "tabs", "exit")

	assert.Contains(t, out, "Login failed: "+fakeapi.MsgBadCredentials)
	assert.Contains(t, out, "Please log in first")
}

func TestApp_CreateSearchShowDelete(t *testing.T) {
	h := newHarness(t)

	out := h.run(
		"login alice", "password123",
		"tab requesters",
		"new",
		"Ada", "Lovelace", "ada@example.org", "Royal Botanic Gardens", "Kew",
		"new",
		"Charles", "Darwin", "cd@example.org", "Down House", "Kent",
		"search love",
		"show 1",
		"delete 2", "y",
		"search",
		"logout",
		"exit",
	)

	assert.Contains(t, out, "Signed in as Alice Smith.")
	assert.Equal(t, 2, strings.Count(out, "* Item created successfully"))
	assert.Contains(t, out, `Requesters (1) matching "love"`)
	assert.Contains(t, out, "#1     Ada Lovelace")
	assert.Contains(t, out, "Royal Botanic Gardens")
	assert.Contains(t, out, "Email:")
	assert.Contains(t, out, "* Item deleted successfully")
	assert.Contains(t, out, "Requesters (1)\n")
	assert.Contains(t, out, "Signed out.")

	recs := h.srv.Records("requesters")
	require.Len(t, recs, 1)
	assert.Equal(t, "Ada", recs[0]["first_name"])
}

func TestApp_DeleteDeclined(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("requests", models.Record{"requester": 1, "request_date": "2024-01-02"})

	out := h.run("login alice", "password123", "delete 1", "n", "exit")

	assert.Contains(t, out, "Cancelled.")
	assert.Len(t, h.srv.Records("requests"), 1)
	assert.Zero(t, h.srv.Calls(http.MethodDelete, "/requests/1/"))
}

func TestApp_TissueCheckboxSentAsInteger(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("requests", models.Record{"requester": 1, "request_date": "2024-01-02"})
	h.srv.Seed("shipments", models.Record{"request": 1, "tracking_number": "TRK-1"})
	h.srv.Seed("metadata", models.Record{"request": 1, "original_sample_id": "S1", "scientific_name": "Quercus robur"})

	out := h.run(
		"login alice", "password123",
		"tab tissues",
		"new",
		"1", "1", "1", "TIS-9", "y", "Freezer A",
		"show 1",
		"exit",
	)

	assert.Contains(t, out, "* Item created successfully")
	assert.Contains(t, out, "Quercus robur (#1)")

	recs := h.srv.Records("tissues")
	require.Len(t, recs, 1)
	assert.Equal(t, json.Number("1"), recs[0]["is_in_jacq"])
	assert.Equal(t, "TIS-9", recs[0]["tissue_barcode"])
}

func TestApp_InvalidFormIsNotSent(t *testing.T) {
	h := newHarness(t)

	out := h.run(
		"login alice", "password123",
		"tab requesters",
		"new",
		"", "", "not-an-email", "", "",
		"n",
		"exit",
	)

	assert.Contains(t, out, "! First Name: This field is required.")
	assert.Contains(t, out, "Discarded.")
	assert.Zero(t, h.srv.Calls(http.MethodPost, "/requesters/"))
}

func TestApp_EditKeepsUnchangedValues(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("requesters", models.Record{
		"first_name":            "Ada",
		"last_name":             "Lovelace",
		"contact_person_email":  "ada@example.org",
		"requester_institution": "RBG",
		"institution_location":  "Kew",
	})

	out := h.run(
		"login alice", "password123",
		"tab requesters",
		"edit 1",
		"", "King", "", "", "-",
		"y",
		"", "", "", "", "London",
		"exit",
	)

	assert.Contains(t, out, "! Location: This field is required.")
	assert.Contains(t, out, "* Item updated successfully")

	recs := h.srv.Records("requesters")
	require.Len(t, recs, 1)
	assert.Equal(t, "King", recs[0]["last_name"])
	assert.Equal(t, "ada@example.org", recs[0]["contact_person_email"])
	assert.Equal(t, "London", recs[0]["institution_location"])
}

func TestApp_RestoresPersistedSession(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("requests", models.Record{"requester": 1, "request_date": "2024-01-02"})

	h.run("login alice", "password123", "exit")
	out := h.run("whoami", "tabs", "exit")

	assert.Contains(t, out, "Welcome back, Alice Smith.")
	assert.Contains(t, out, "Alice Smith (alice)")
	assert.Contains(t, out, "* requests       Requests       1")
	assert.Equal(t, 1, h.srv.Calls(http.MethodGet, "/auth/verify-token/"))
}

func TestApp_RevokedTokenIsNotRestored(t *testing.T) {
	h := newHarness(t)

	h.run("login alice", "password123", "exit")
	h.srv.RevokeAll()
	out := h.run("tabs", "exit")

	assert.NotContains(t, out, "Welcome back")
	assert.Contains(t, out, "Please log in first")
}

func TestApp_UnauthorizedLoadEndsSessionOnce(t *testing.T) {
	h := newHarness(t)

	var out bytes.Buffer
	app, err := NewApp(context.Background(), h.cfg,
		WithInput(strings.NewReader("tabs\nexit\n")),
		WithOutput(&out),
		WithLogger(logging.Nop()),
	)
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	res := app.Session().Login(ctx, "alice", "password123")
	require.True(t, res.Success)

	h.srv.RevokeAll()
	require.NoError(t, app.Run(ctx))

	assert.Equal(t, 1, strings.Count(out.String(), msgSessionExpired))
	assert.Contains(t, out.String(), "Please log in first")
	assert.False(t, app.Session().IsAuthenticated())
	assert.Equal(t, 1, h.srv.Calls(http.MethodPost, "/auth/logout/"))
}

func TestApp_PartialLoadFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("requests", models.Record{"requester": 1, "request_date": "2024-01-02"})
	h.srv.FailKind("metadata", http.StatusInternalServerError)

	out := h.run("login alice", "password123", "tabs", "exit")

	assert.Contains(t, out, "Could not load metadata")
	assert.Contains(t, out, "* requests       Requests       1")
	assert.Contains(t, out, "  metadata       Metadata       0")
}

func TestApp_RegisterAndVerify(t *testing.T) {
	h := newHarness(t, fakeapi.WithVerification())

	out := h.run(
		"register",
		"bob", "bob@example.org", "Bob", "Jones", "password123", "password123",
		"exit",
	)
	assert.Contains(t, out, fakeapi.MsgRegisteredVerify)
	assert.Contains(t, out, "verify-email <token>")

	token, ok := h.srv.VerificationToken("bob")
	require.True(t, ok)

	out = h.run("verify-email "+token, "login bob", "password123", "whoami", "exit")
	assert.Contains(t, out, fakeapi.MsgEmailVerified)
	assert.Contains(t, out, "Bob Jones (bob)")
}

func TestApp_RegisterFieldErrors(t *testing.T) {
	h := newHarness(t)

	out := h.run(
		"register",
		"alice", "other@example.org", "A", "B", "password123", "password123",
		"register",
		"carol", "carol-at-example", "Carol", "C", "short", "other",
		"exit",
	)

	assert.Contains(t, out, "  Username: "+fakeapi.MsgUsernameTaken)
	assert.Contains(t, out, "  Email: Enter a valid email address.")
	assert.Contains(t, out, "  Password: Password must be at least 8 characters long.")
	assert.Contains(t, out, "  Confirm password: Passwords do not match.")
}

func TestApp_PasswordReset(t *testing.T) {
	h := newHarness(t)

	out := h.run("forgot-password alice@example.org", "reset-password", "", "", "exit")
	assert.Contains(t, out, fakeapi.MsgResetSent)
	assert.Contains(t, out, "Error: Invalid recovery link.")

	uid, token, ok := h.srv.ResetLink("alice@example.org")
	require.True(t, ok)

	out = h.run(
		"reset-password "+uid+" "+token, "newpassword1", "newpassword1",
		"login alice", "newpassword1",
		"exit",
	)
	assert.Contains(t, out, fakeapi.MsgPasswordReset)
	assert.Contains(t, out, "Signed in as Alice Smith.")
}

func TestApp_VerifyEmailFailureOffersResend(t *testing.T) {
	h := newHarness(t, fakeapi.WithVerification())
	h.run("register", "bob", "bob@example.org", "Bob", "Jones", "password123", "password123", "exit")

	out := h.run("verify-email bogus", "y", "bob@example.org", "exit")

	assert.Contains(t, out, "Error: "+fakeapi.MsgBadVerification)
	assert.Contains(t, out, fakeapi.MsgVerificationSent)
}
