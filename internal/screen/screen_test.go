package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

type mockGateway struct {
	mu      sync.Mutex
	lists   map[string]string
	listErr map[string]error
	postErr error
	putErr  error
	delErr  error

	getCalls  int
	postCalls int
	putCalls  int
	delCalls  int

	lastPostBody interface{}
	lastPutPath  string

	// release, when set, blocks GetList until the channel closes.
	release chan struct{}
}

func (m *mockGateway) GetList(ctx context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	m.getCalls++
	release := m.release
	payload, ok := m.lists[path]
	err := m.listErr[path]
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(payload), nil
}

func (m *mockGateway) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postCalls++
	m.lastPostBody = body
	if m.postErr != nil {
		return nil, m.postErr
	}
	return json.RawMessage("{}"), nil
}

func (m *mockGateway) Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	m.lastPutPath = path
	if m.putErr != nil {
		return nil, m.putErr
	}
	return json.RawMessage("{}"), nil
}

func (m *mockGateway) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delCalls++
	return m.delErr
}

func (m *mockGateway) calls() (int, int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls, m.postCalls, m.putCalls, m.delCalls
}

func majorsList(names ...string) string {
	items := make([]string, 0, len(names))
	for i, name := range names {
		items = append(items, fmt.Sprintf(`{"id":"%d","name":"%s","abbreviation":"AB%d"}`, i+1, name, i+1))
	}
	return "[" + joinJSON(items) + "]"
}

func joinJSON(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out
}

func newTestScreen(t *testing.T, gw Gateway) *Screen {
	t.Helper()
	return New(majorsConfig(), gw, 3*time.Second, zap.NewNop())
}

func TestLoadPopulatesRecords(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("Rekayasa Perangkat Lunak", "Akuntansi")}}
	scr := newTestScreen(t, gw)

	require.NoError(t, scr.Load(context.Background()))

	snap := scr.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	assert.Len(t, snap.Records, 2)
	assert.Empty(t, snap.Error)
}

func TestLoadFailureLeavesScreenRecoverable(t *testing.T) {
	gw := &mockGateway{listErr: map[string]error{"/majors": appErrors.ErrUpstream}}
	scr := newTestScreen(t, gw)

	require.Error(t, scr.Load(context.Background()))
	snap := scr.Snapshot()
	assert.Equal(t, PhaseLoadFailed, snap.Phase)
	assert.Equal(t, scr.cfg.Messages.LoadFailed, snap.Error)

	// Any later fetch recovers the screen.
	gw.mu.Lock()
	gw.listErr = nil
	gw.lists = map[string]string{"/majors": majorsList("Multimedia")}
	gw.mu.Unlock()

	require.NoError(t, scr.Load(context.Background()))
	assert.Equal(t, PhaseLoaded, scr.Snapshot().Phase)
}

func TestDoubleLoadIsIdempotent(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("RPL")}}
	scr := newTestScreen(t, gw)

	require.NoError(t, scr.Load(context.Background()))
	first := scr.Snapshot()
	require.NoError(t, scr.Load(context.Background()))
	second := scr.Snapshot()

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Phase, second.Phase)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	gw := &mockGateway{
		lists:   map[string]string{"/majors": majorsList("Stale")},
		release: release,
	}
	scr := newTestScreen(t, gw)

	done := make(chan struct{})
	go func() {
		_ = scr.Load(context.Background())
		close(done)
	}()

	// Wait for the slow load to be in flight, then run a newer one.
	for {
		if calls, _, _, _ := gw.calls(); calls > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	gw.mu.Lock()
	gw.release = nil
	gw.lists = map[string]string{"/majors": majorsList("Fresh", "Newer")}
	gw.mu.Unlock()

	require.NoError(t, scr.Load(context.Background()))
	close(release)
	<-done

	snap := scr.Snapshot()
	assert.Len(t, snap.Records, 2, "older fetch must not overwrite the newer result")
}

func TestSubmitCreateRefetchesAndResetsDraft(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("RPL")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	require.NoError(t, scr.SetDraft(map[string]string{"name": "Teknik Mesin", "abbreviation": "TM"}))

	getsBefore, _, _, _ := gw.calls()
	require.NoError(t, scr.Submit(context.Background()))
	getsAfter, posts, _, _ := gw.calls()

	assert.Equal(t, 1, posts)
	assert.Greater(t, getsAfter, getsBefore, "successful submit must re-fetch the list")

	snap := scr.Snapshot()
	assert.Empty(t, snap.Draft["name"])
	assert.Equal(t, "create", snap.Mode)
	require.NotNil(t, snap.Toast)
	assert.Equal(t, scr.cfg.Messages.Created, snap.Toast.Message)
}

func TestSubmitDuplicateRejectedWithoutNetworkCall(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("Akuntansi")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	require.NoError(t, scr.SetDraft(map[string]string{"name": "akuntansi", "abbreviation": "AK"}))

	_, postsBefore, _, _ := gw.calls()
	err := scr.Submit(context.Background())
	_, postsAfter, _, _ := gw.calls()

	require.Error(t, err)
	assert.Equal(t, postsBefore, postsAfter, "duplicate guard must reject locally")

	snap := scr.Snapshot()
	assert.Equal(t, scr.cfg.Messages.Duplicate, snap.Error)
	assert.Equal(t, "akuntansi", snap.Draft["name"], "draft survives a rejected submit")
}

func TestSubmitMissingFieldsRejectedLocally(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("RPL")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	require.NoError(t, scr.SetDraft(map[string]string{"name": "Teknik Mesin"}))

	err := scr.Submit(context.Background())
	require.Error(t, err)

	_, posts, _, _ := gw.calls()
	assert.Zero(t, posts)
	assert.Equal(t, scr.cfg.Messages.MissingFields, scr.Snapshot().Error)
}

func TestSubmitSurfacesUpstreamMessage(t *testing.T) {
	gw := &mockGateway{
		lists:   map[string]string{"/majors": majorsList("RPL")},
		postErr: &appErrors.Error{Code: appErrors.ErrUpstream.Code, Status: 422, Message: "Nama jurusan tidak valid"},
	}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	require.NoError(t, scr.SetDraft(map[string]string{"name": "Teknik", "abbreviation": "TK"}))
	require.Error(t, scr.Submit(context.Background()))

	snap := scr.Snapshot()
	assert.Equal(t, "Nama jurusan tidak valid", snap.Error)
	assert.Equal(t, "Teknik", snap.Draft["name"], "draft survives a failed submit")
	assert.Equal(t, SubmitFailed, snap.Submit)
}

func TestEditSeedsDraftAndSubmitUpdates(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("Akuntansi")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	require.NoError(t, scr.BeginEdit("1"))
	snap := scr.Snapshot()
	assert.Equal(t, "edit", snap.Mode)
	assert.Equal(t, "Akuntansi", snap.Draft["name"])

	// Re-submitting the same name while editing that record is not a
	// duplicate of itself.
	require.NoError(t, scr.Submit(context.Background()))
	_, _, puts, _ := gw.calls()
	assert.Equal(t, 1, puts)
	assert.Equal(t, "/majors/1", gw.lastPutPath)
}

func TestCancelEditReturnsToCreateMode(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("Akuntansi")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	require.NoError(t, scr.BeginEdit("1"))
	scr.CancelEdit()

	snap := scr.Snapshot()
	assert.Equal(t, "create", snap.Mode)
	assert.Empty(t, snap.Draft)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("Akuntansi")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	err := scr.ConfirmDelete(context.Background())
	require.Error(t, err)
	_, _, _, dels := gw.calls()
	assert.Zero(t, dels, "no delete without a preceding request")

	require.NoError(t, scr.BeginDelete("1"))
	require.NoError(t, scr.ConfirmDelete(context.Background()))
	_, _, _, dels = gw.calls()
	assert.Equal(t, 1, dels)
}

func TestCancelDeleteLeavesListUntouched(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("Akuntansi", "RPL")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	before := scr.Snapshot()
	require.NoError(t, scr.BeginDelete("2"))
	scr.CancelDelete()
	after := scr.Snapshot()

	_, _, _, dels := gw.calls()
	assert.Zero(t, dels)
	assert.Empty(t, after.PendingDelete)
	assert.Equal(t, before.Records, after.Records)
}

func TestToastExpires(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("RPL")}}
	scr := newTestScreen(t, gw)
	require.NoError(t, scr.Load(context.Background()))

	now := time.Now()
	scr.now = func() time.Time { return now }

	require.NoError(t, scr.SetDraft(map[string]string{"name": "Teknik", "abbreviation": "TK"}))
	require.NoError(t, scr.Submit(context.Background()))
	require.NotNil(t, scr.Snapshot().Toast)

	scr.now = func() time.Time { return now.Add(4 * time.Second) }
	assert.Nil(t, scr.Snapshot().Toast, "toast dismisses itself after the TTL")
}

func TestSetDraftRejectsUnknownFields(t *testing.T) {
	gw := &mockGateway{lists: map[string]string{"/majors": majorsList("RPL")}}
	scr := newTestScreen(t, gw)

	err := scr.SetDraft(map[string]string{"bogus": "x"})
	require.Error(t, err)
}
