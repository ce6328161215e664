package telemetry

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/posthog/posthog-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/taskmate/internal/events"
	"github.com/josephgoksu/taskmate/internal/task"
)

// mockEnqueuer captures events for testing.
type mockEnqueuer struct {
	mu     sync.Mutex
	events []posthog.Capture
	closed bool
}

func (m *mockEnqueuer) Enqueue(msg posthog.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if capture, ok := msg.(posthog.Capture); ok {
		m.events = append(m.events, capture)
	}
	return nil
}

func (m *mockEnqueuer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockEnqueuer) getEvents() []posthog.Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]posthog.Capture(nil), m.events...)
}

func TestPostHogClient_Track(t *testing.T) {
	mock := &mockEnqueuer{}
	c := newPostHogClientWithEnqueuer(mock, "install-1", "1.2.3")

	c.Track(EventChatTurn, Properties{"iterations": 2})

	got := mock.getEvents()
	require.Len(t, got, 1)
	assert.Equal(t, "install-1", got[0].DistinctId)
	assert.Equal(t, EventChatTurn, got[0].Event)
	assert.Equal(t, 2, got[0].Properties["iterations"])
	assert.Equal(t, runtime.GOOS, got[0].Properties["os"])
	assert.Equal(t, "1.2.3", got[0].Properties["app_version"])
	assert.Equal(t, false, got[0].Properties["$process_person_profile"])
}

func TestPostHogClient_CloseStopsTracking(t *testing.T) {
	mock := &mockEnqueuer{}
	c := newPostHogClientWithEnqueuer(mock, "id", "dev")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	c.Track("late", nil)

	assert.True(t, mock.closed)
	assert.Empty(t, mock.getEvents())
}

func TestNew_EmptyAPIKeyIsNoop(t *testing.T) {
	c, err := New(ClientConfig{})
	require.NoError(t, err)
	assert.IsType(t, NoopClient{}, c)
	c.Track("anything", nil)
	assert.NoError(t, c.Close())
}

func TestPostHogClient_TrackConcurrent(t *testing.T) {
	mock := &mockEnqueuer{}
	c := newPostHogClientWithEnqueuer(mock, "id", "dev")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Track(EventTaskMutation, nil)
		}()
	}
	wg.Wait()
	assert.Len(t, mock.getEvents(), 20)
}

func TestTrackChatTurn(t *testing.T) {
	mock := &mockEnqueuer{}
	c := newPostHogClientWithEnqueuer(mock, "id", "dev")

	TrackChatTurn(c, ChatTurn{Iterations: 3, ToolCalls: []string{"get_tasks", "complete_task"}, Mutated: true})
	TrackChatTurn(nil, ChatTurn{})

	got := mock.getEvents()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Properties["tool_count"])
	assert.Equal(t, true, got[0].Properties["mutated"])
}

func TestForward_TracksTaskMutations(t *testing.T) {
	bus := events.NewBus()
	mock := &mockEnqueuer{}
	c := newPostHogClientWithEnqueuer(mock, "id", "dev")

	ctx, cancel := context.WithCancel(context.Background())
	done := Forward(ctx, bus, c)

	svc := task.NewService(task.NewMemoryStore(), events.NewTaskPublisher(bus))
	created, err := svc.Create(task.CreateInput{Title: "write docs"})
	require.NoError(t, err)
	_, err = svc.Complete(created.ID)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(mock.getEvents()) == 2 }, time.Second, 10*time.Millisecond)
	got := mock.getEvents()
	assert.Equal(t, EventTaskMutation, got[0].Event)
	assert.Equal(t, "created", got[0].Properties["action"])
	assert.Equal(t, "completed", got[1].Properties["action"])

	cancel()
	<-done
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestLoadInstallID_PersistsAcrossLoads(t *testing.T) {
	fsys := afero.NewMemMapFs()

	first, err := LoadInstallID(fsys, "/state")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := LoadInstallID(fsys, "/state")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadInstallID_CorruptFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/state/"+IdentityFileName, []byte("{"), 0o600))

	_, err := LoadInstallID(fsys, "/state")
	assert.Error(t, err)
}
