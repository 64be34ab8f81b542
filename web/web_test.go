package web

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"clubboard/database"
	"clubboard/database/model"
	"clubboard/logger"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("CLUB_SESSION_SECRET", "test-secret")
	t.Setenv("CLUB_MEMBERSHIP_PASSCODE", "open-sesame")
	t.Setenv("CLUB_LOG_FOLDER", t.TempDir())
	logger.InitLogger(logging.DEBUG)
	if err := database.InitDB(filepath.Join(t.TempDir(), "clubboard.db")); err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.CloseDB()
	})

	server := NewServer()
	engine, err := server.initRouter()
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func signUp(t *testing.T, client *http.Client, base, username, password, confirmation string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(base+"/sign-up", url.Values{
		"username":             {username},
		"password":             {password},
		"passwordConfirmation": {confirmation},
	})
	require.NoError(t, err)
	return resp
}

func logIn(t *testing.T, client *http.Client, base, username, password string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(base+"/log-in", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	return resp
}

func TestSignUpLoginMembershipScenario(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// Sign-up renders the membership prompt and writes the user row.
	resp := signUp(t, client, srv.URL, "alice", "secret1", "secret1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Become a member")

	var alice model.User
	require.NoError(t, database.GetDB().First(&alice, "username = ?", "alice").Error)
	assert.False(t, alice.Membership)

	// A second sign-up with the same name is rejected with a field error.
	resp = signUp(t, client, srv.URL, "alice", "other1", "other1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Username is already taken")

	// Sign-up does not log the visitor in.
	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, resp), "Signed in as")

	// Wrong password: flash on the login form, session stays anonymous.
	resp = logIn(t, client, srv.URL, "alice", "wrongpass")
	assert.Equal(t, "/log-in", resp.Request.URL.Path)
	assert.Contains(t, readBody(t, resp), "Incorrect password")

	resp = logIn(t, client, srv.URL, "bob", "secret1")
	assert.Contains(t, readBody(t, resp), "Incorrect username")

	// Correct credentials land back on the board, authenticated.
	resp = logIn(t, client, srv.URL, "alice", "secret1")
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, readBody(t, resp), "Signed in as alice")

	// Wrong passcode re-renders the prompt with the failure flag.
	resp, err = client.PostForm(srv.URL+"/membership", url.Values{
		"membershipSecret": {"not-it"},
	})
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "That is not the passcode.")
	require.NoError(t, database.GetDB().First(&alice, "username = ?", "alice").Error)
	assert.False(t, alice.Membership)

	// The configured passcode unlocks membership for the session user.
	resp, err = client.PostForm(srv.URL+"/membership", url.Values{
		"membershipSecret": {"open-sesame"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/", resp.Request.URL.Path)
	readBody(t, resp)
	require.NoError(t, database.GetDB().First(&alice, "username = ?", "alice").Error)
	assert.True(t, alice.Membership)

	// Log out returns the session to anonymous.
	resp, err = client.Get(srv.URL + "/log-out")
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, resp), "Signed in as")
}

func TestMessagePostingAndFiltering(t *testing.T) {
	srv := newTestServer(t)
	author := newClient(t)

	readBody(t, signUp(t, author, srv.URL, "alice", "secret1", "secret1"))
	readBody(t, logIn(t, author, srv.URL, "alice", "secret1"))

	// Posting while unauthenticated bounces to the login form.
	anon := newClient(t)
	resp, err := anon.PostForm(srv.URL+"/new-message", url.Values{
		"title": {"sneaky"},
		"text":  {"no identity"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/log-in", resp.Request.URL.Path)
	readBody(t, resp)
	var count int64
	require.NoError(t, database.GetDB().Model(model.Message{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Authenticated post lands on the board with the new message.
	resp, err = author.PostForm(srv.URL+"/new-message", url.Values{
		"title": {"hello club"},
		"text":  {"first post"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/", resp.Request.URL.Path)
	body := readBody(t, resp)
	assert.Contains(t, body, "hello club")
	assert.Contains(t, body, "by alice")

	// Anonymous viewers see the text but not the author or controls.
	resp, err = anon.Get(srv.URL + "/")
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.Contains(t, body, "hello club")
	assert.Contains(t, body, "first post")
	assert.NotContains(t, body, "by alice")
	assert.NotContains(t, body, "Delete")
}

func TestMessageDeletion(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)

	readBody(t, signUp(t, alice, srv.URL, "alice", "secret1", "secret1"))
	readBody(t, logIn(t, alice, srv.URL, "alice", "secret1"))
	readBody(t, signUp(t, bob, srv.URL, "bob", "secret2", "secret2"))
	readBody(t, logIn(t, bob, srv.URL, "bob", "secret2"))

	resp, err := alice.PostForm(srv.URL+"/new-message", url.Values{
		"title": {"hello club"},
		"text":  {"first post"},
	})
	require.NoError(t, err)
	readBody(t, resp)

	var msg model.Message
	require.NoError(t, database.GetDB().First(&msg).Error)

	deletePath := srv.URL + "/messages/" + strconv.Itoa(msg.Id) + "/delete"

	// Someone else's message stays put.
	resp, err = bob.PostForm(deletePath, url.Values{})
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "You can only delete your own messages.")
	var count int64
	require.NoError(t, database.GetDB().Model(model.Message{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The author deletes it; message and authorship go together.
	resp, err = alice.PostForm(deletePath, url.Values{})
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "Message deleted.")
	require.NoError(t, database.GetDB().Model(model.Message{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, database.GetDB().Model(model.Author{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Deleting the same id again is a quiet no-op.
	resp, err = alice.PostForm(deletePath, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)
}

func TestStaleSessionUserDegradesToAnonymous(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	readBody(t, signUp(t, client, srv.URL, "alice", "secret1", "secret1"))
	readBody(t, logIn(t, client, srv.URL, "alice", "secret1"))

	// Drop the user behind the session's back.
	require.NoError(t, database.GetDB().Where("username = ?", "alice").Delete(&model.User{}).Error)

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), "Signed in as")
}

func TestRouterRequiresSessionSecret(t *testing.T) {
	t.Setenv("CLUB_SESSION_SECRET", "")
	t.Setenv("CLUB_LOG_FOLDER", t.TempDir())
	logger.InitLogger(logging.DEBUG)
	if err := database.InitDB(filepath.Join(t.TempDir(), "clubboard.db")); err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.CloseDB()
	})

	server := NewServer()
	_, err := server.initRouter()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "CLUB_SESSION_SECRET"))
}
