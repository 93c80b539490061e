package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusOnline, Classify("Currently In-Game"))
	assert.Equal(t, StatusOnline, Classify("Currently Online"))
	assert.Equal(t, StatusOffline, Classify("Currently Offline"))
	assert.Equal(t, StatusOffline, Classify(""))
	// The substring rule is deliberate: any header mentioning "online" counts.
	assert.Equal(t, StatusOnline, Classify("Last Online 3 days ago"))
}

func TestParseProfileURL(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"https://steamcommunity.com/profiles/76561197960287930", "76561197960287930", true},
		{"http://steamcommunity.com/profiles/76561197960287930/", "76561197960287930", true},
		{"  https://steamcommunity.com/profiles/76561199999999999 ", "76561199999999999", true},
		{"https://steamcommunity.com/id/gabelogannewell", "", false},
		{"https://steamcommunity.com/profiles/1234", "", false},
		{"https://example.com/profiles/76561197960287930", "", false},
		{"not a url", "", false},
	}
	for _, tc := range cases {
		got, err := ParseProfileURL(tc.raw)
		if tc.ok {
			require.NoError(t, err, tc.raw)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrBadProfileURL, tc.raw)
		}
	}
}

func TestValidProfileID(t *testing.T) {
	assert.True(t, ValidProfileID("76561197960287930"))
	assert.False(t, ValidProfileID("1234"))
	assert.False(t, ValidProfileID("76561197960287930x"))
	assert.False(t, ValidProfileID(""))
}

func profilePage(name, statusHeader string) string {
	page := `<html><body><div class="profile_page">`
	if name != "" {
		page += fmt.Sprintf(`<span class="actual_persona_name">%s</span>`, name)
	}
	if statusHeader != "" {
		page += fmt.Sprintf(`<div class="profile_in_game_header">%s</div>`, statusHeader)
	}
	return page + `</div></body></html>`
}

func TestFetchParsesProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles/76561197960287930", r.URL.Path)
		fmt.Fprint(w, profilePage("Gaben", "Currently In-Game"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	p, err := c.Fetch(context.Background(), "76561197960287930")
	require.NoError(t, err)
	assert.Equal(t, "Gaben", p.Name)
	assert.Equal(t, StatusOnline, p.Status)
}

func TestFetchMissingNameAndHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, profilePage("", ""))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	p, err := c.Fetch(context.Background(), "76561197960287930")
	require.NoError(t, err)
	assert.Equal(t, UnknownName, p.Name)
	assert.Equal(t, StatusOffline, p.Status)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Fetch(context.Background(), "76561197960287930")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "http", fe.Kind)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Fetch(context.Background(), "76561197960287930")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}
