package faa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactSource_DOF(t *testing.T) {
	archive := buildZip(t, map[string][]byte{"DOF.DAT": []byte("  CURRENCY DATE = 10/05/25\n")})

	mux := http.NewServeMux()
	mux.HandleFunc("/dof/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="/files/DAILY_DOF_DAT.zip">DOF</a>`))
	})
	mux.HandleFunc("/files/DAILY_DOF_DAT.zip", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	enc, err := LookupEncoding("utf-8")
	require.NoError(t, err)
	src := NewDOFSource(testClient(), srv.URL+"/dof/", "dof", enc, testLogger())

	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "  CURRENCY DATE = 10/05/25\n", string(b))
}

func TestArtifactSource_APTUsesCycleKeyword(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	archive := buildZip(t, map[string][]byte{"APT.txt": []byte("APT\n")})
	var requested string

	mux := http.NewServeMux()
	mux.HandleFunc("/nasr/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<a href="/sub/28DaySubscription_Effective_2025-09-04.zip">old</a>`)
		fmt.Fprint(w, `<a href="/sub/28DaySubscription_Effective_2025-10-02.zip">current</a>`)
	})
	mux.HandleFunc("/sub/", func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	enc, err := LookupEncoding("windows-1252")
	require.NoError(t, err)
	src := NewAPTSource(testClient(), srv.URL+"/nasr/", "28DaySubscription", enc, testLogger())

	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "/sub/28DaySubscription_Effective_2025-10-02.zip", requested)
}

func TestArtifactSource_LocatorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<p>page redesigned</p>`))
	}))
	defer srv.Close()

	enc, err := LookupEncoding("utf-8")
	require.NoError(t, err)
	_, err = NewDOFSource(testClient(), srv.URL, "dof", enc, testLogger()).Open(context.Background())
	require.ErrorIs(t, err, ErrArtifactNotFound)
}
