package display

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fhuszti/medias-display-go/internal/mock"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/registry"
	mediaService "github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

func imageMedia() *model.Media {
	return &model.Media{
		ID:        uuid.NewUUID(),
		Bucket:    "images",
		ObjectKey: "cat.png",
		MimeType:  "image/png",
		Status:    model.MediaStatusCompleted,
	}
}

func newDisplay(reg *registry.Registry, f *mock.BlobFetcher) *Display {
	return New(context.Background(), uuid.NewUUID(), reg, f)
}

// waitState long-polls d until it reaches want.
func waitState(t *testing.T, d *Display, want State) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := d.Snapshot()
	for s.State != want {
		var err error
		s, err = d.Wait(ctx, s.Version)
		if err != nil {
			t.Fatalf("display stuck in %q, want %q: %v", s.State, want, err)
		}
	}
	return s
}

func tokenOf(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

func TestMount_NonImageShortCircuits(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}

	doc := &model.Media{ID: uuid.NewUUID(), MimeType: "application/pdf", Status: model.MediaStatusCompleted}
	for _, m := range []*model.Media{doc, nil} {
		d := newDisplay(reg, f)
		if err := d.Mount(m, model.SizeSmall); err != nil {
			t.Fatalf("Mount: %v", err)
		}
		if s := d.Snapshot(); s.State != StateNoFile || s.URL != "" {
			t.Errorf("snapshot = %+v; want no_file", s)
		}
		d.Unmount()
	}
	if f.Calls() != 0 {
		t.Errorf("fetches = %d; want 0", f.Calls())
	}
	if reg.Len() != 0 {
		t.Errorf("registry entries = %d; want 0", reg.Len())
	}
}

func TestMount_LoadsThenReady(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}
	m := imageMedia()

	d := newDisplay(reg, f)
	if err := d.Mount(m, model.SizeMedium); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	s := waitState(t, d, StateReady)

	if s.URL == "" || s.FileID == nil || *s.FileID != m.ID || s.Size != model.SizeMedium {
		t.Errorf("snapshot = %+v", s)
	}
	if s.SharedBy != 1 {
		t.Errorf("shared by = %d; want 1", s.SharedBy)
	}
	e, ok := reg.Lookup(m.ID.String(), model.SizeMedium)
	if !ok || e.RefCount != 1 || e.URL != s.URL {
		t.Errorf("registry entry = %+v, %v", e, ok)
	}

	d.Unmount()
	if reg.Len() != 0 {
		t.Error("unmount must release the entry")
	}
	if s := d.Snapshot(); s.URL != "" {
		t.Errorf("unmounted display still exposes %q", s.URL)
	}
}

func TestMount_SmallThumbnailFallsBackToOriginal(t *testing.T) {
	m := imageMedia()
	strg := &mock.Storage{
		Files:        map[string][]byte{"cat.png": []byte("original-bytes")},
		NotFoundErr:  mediaService.ErrObjectNotFound,
		ReadErrByKey: map[string][]error{},
	}
	disp := &mock.Dispatcher{}
	fetcher := mediaService.NewBlobFetcher(strg, disp, &mock.FetchRecorder{}, mediaService.FetchConfig{
		Timeout: time.Second, MaxRetries: 1, InitialInterval: time.Millisecond,
	})
	reg := registry.New("http://x")

	d := New(context.Background(), uuid.NewUUID(), reg, fetcher)
	if err := d.Mount(m, model.SizeSmall); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	s := waitState(t, d, StateReady)

	b, ok := reg.Resolve(tokenOf(s.URL))
	if !ok || string(b.Data) != "original-bytes" {
		t.Errorf("url resolves to %q, %v; want the original", b.Data, ok)
	}
	if !disp.ResizeCalled {
		t.Error("a resize of the missing thumbnail should be queued")
	}
	d.Unmount()
}

func TestTeardown_SharedEntrySurvivesFirstUnmount(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}
	m := imageMedia()

	a := newDisplay(reg, f)
	_ = a.Mount(m, model.SizeMedium)
	sa := waitState(t, a, StateReady)

	b := newDisplay(reg, f)
	_ = b.Mount(m, model.SizeMedium)
	sb := waitState(t, b, StateReady)

	if sa.URL != sb.URL {
		t.Fatalf("A has %q, B has %q; want the same url", sa.URL, sb.URL)
	}
	if f.Calls() != 1 {
		t.Errorf("fetches = %d; want 1", f.Calls())
	}
	if got := a.Snapshot().SharedBy; got != 2 {
		t.Errorf("A shared by = %d; want 2", got)
	}

	a.Unmount()
	if got := b.Snapshot(); got.URL != sb.URL || got.State != StateReady {
		t.Errorf("B changed after A unmounted: %+v", got)
	}
	if _, ok := reg.Resolve(tokenOf(sb.URL)); !ok {
		t.Error("B's url must stay valid")
	}
	if got := b.Snapshot().SharedBy; got != 1 {
		t.Errorf("B shared by = %d; want 1", got)
	}

	b.Unmount()
	if _, ok := reg.Lookup(m.ID.String(), model.SizeMedium); ok {
		t.Error("registry must not hold the entry once both are unmounted")
	}
}

func TestRepeatedMounts_FetchOnce(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}
	m := imageMedia()

	first := newDisplay(reg, f)
	_ = first.Mount(m, model.SizeLarge)
	want := waitState(t, first, StateReady).URL

	var others []*Display
	for i := 0; i < 5; i++ {
		d := newDisplay(reg, f)
		_ = d.Mount(m, model.SizeLarge)
		if s := d.Snapshot(); s.State != StateReady || s.URL != want {
			t.Fatalf("display %d = %+v; want ready on %q", i, s, want)
		}
		others = append(others, d)
	}
	if f.Calls() != 1 {
		t.Errorf("fetches = %d; want 1", f.Calls())
	}
	if e, _ := reg.Lookup(m.ID.String(), model.SizeLarge); e.RefCount != 6 {
		t.Errorf("ref count = %d; want 6", e.RefCount)
	}

	first.Unmount()
	for _, d := range others {
		d.Unmount()
	}
	if reg.Len() != 0 {
		t.Errorf("registry entries = %d; want 0", reg.Len())
	}
}

func TestConcurrentLoads_ShareOneURL(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{Gate: make(chan struct{})}
	started := f.Started()
	m := imageMedia()

	a, b := newDisplay(reg, f), newDisplay(reg, f)
	_ = a.Mount(m, model.SizeSmall)
	_ = b.Mount(m, model.SizeSmall)
	<-started
	<-started
	close(f.Gate)

	sa := waitState(t, a, StateReady)
	sb := waitState(t, b, StateReady)
	if sa.URL != sb.URL {
		t.Fatalf("urls differ: %q vs %q", sa.URL, sb.URL)
	}
	if e, _ := reg.Lookup(m.ID.String(), model.SizeSmall); e.RefCount != 2 {
		t.Errorf("ref count = %d; want 2", e.RefCount)
	}
	a.Unmount()
	b.Unmount()
}

func TestUnmountDuringFetch_LeavesNoEntry(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{Gate: make(chan struct{})}
	started := f.Started()

	d := newDisplay(reg, f)
	_ = d.Mount(imageMedia(), model.SizeOriginal)
	<-started

	done := make(chan struct{})
	go func() {
		d.Unmount()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unmount did not return while a fetch was in flight")
	}
	close(f.Gate)

	if reg.Len() != 0 {
		t.Errorf("registry entries = %d; want 0", reg.Len())
	}
	if err := d.Mount(imageMedia(), model.SizeOriginal); !errors.Is(err, ErrUnmounted) {
		t.Errorf("Mount after Unmount = %v; want ErrUnmounted", err)
	}
}

func TestUpdate_ReleasesPreviousEntry(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}
	m1, m2 := imageMedia(), imageMedia()

	d := newDisplay(reg, f)
	_ = d.Mount(m1, model.SizeSmall)
	waitState(t, d, StateReady)

	if err := d.Update(m2, model.SizeSmall); err != nil {
		t.Fatalf("Update: %v", err)
	}
	s := waitState(t, d, StateReady)
	if *s.FileID != m2.ID {
		t.Errorf("file = %s; want %s", *s.FileID, m2.ID)
	}
	if _, ok := reg.Lookup(m1.ID.String(), model.SizeSmall); ok {
		t.Error("previous entry must be released")
	}
	if _, ok := reg.Lookup(m2.ID.String(), model.SizeSmall); !ok {
		t.Error("new entry must be held")
	}

	// same media and size: nothing happens
	v := d.Snapshot().Version
	_ = d.Update(m2, model.SizeSmall)
	if d.Snapshot().Version != v || f.Calls() != 2 {
		t.Error("updating to the current media must be a no-op")
	}

	// switching to nothing releases everything
	_ = d.Update(nil, model.SizeSmall)
	if s := d.Snapshot(); s.State != StateNoFile || reg.Len() != 0 {
		t.Errorf("snapshot = %+v, entries = %d", s, reg.Len())
	}
	d.Unmount()
}

func TestRemount_ReleasesPreviousEntry(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}
	m1, m2 := imageMedia(), imageMedia()

	d := newDisplay(reg, f)
	_ = d.Mount(m1, model.SizeSmall)
	waitState(t, d, StateReady)

	if err := d.Mount(m2, model.SizeSmall); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	s := waitState(t, d, StateReady)
	if *s.FileID != m2.ID {
		t.Errorf("file = %s; want %s", *s.FileID, m2.ID)
	}
	if _, ok := reg.Lookup(m1.ID.String(), model.SizeSmall); ok {
		t.Error("entry of the first mount must be released")
	}

	d.Unmount()
	if reg.Len() != 0 {
		t.Errorf("registry entries after unmount = %d; want 0", reg.Len())
	}
}

func TestRemountDuringFetch_LeavesNoEntry(t *testing.T) {
	reg := registry.New("http://x")
	gate := make(chan struct{})
	f := &mock.BlobFetcher{Gate: gate}
	started := f.Started()
	m1, m2 := imageMedia(), imageMedia()

	d := newDisplay(reg, f)
	_ = d.Mount(m1, model.SizeSmall)
	<-started

	_ = d.Mount(m2, model.SizeSmall)
	close(gate)
	s := waitState(t, d, StateReady)
	if *s.FileID != m2.ID {
		t.Errorf("file = %s; want %s", *s.FileID, m2.ID)
	}
	if _, ok := reg.Lookup(m1.ID.String(), model.SizeSmall); ok {
		t.Error("first fetch must not register after a remount")
	}

	d.Unmount()
	if reg.Len() != 0 {
		t.Errorf("registry entries after unmount = %d; want 0", reg.Len())
	}
}

func TestUpdateDuringFetch_DropsStaleResult(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{Gate: make(chan struct{})}
	started := f.Started()
	m1, m2 := imageMedia(), imageMedia()

	d := newDisplay(reg, f)
	_ = d.Mount(m1, model.SizeMedium)
	<-started
	_ = d.Update(m2, model.SizeMedium)
	<-started
	close(f.Gate)

	s := waitState(t, d, StateReady)
	if *s.FileID != m2.ID {
		t.Errorf("file = %s; want %s", *s.FileID, m2.ID)
	}
	d.Unmount()
	if reg.Len() != 0 {
		t.Errorf("registry entries = %d; want 0", reg.Len())
	}
}

func TestFetchFailure_ErrorStateWithoutRetry(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{Err: mediaService.ErrFetchFailed}

	d := newDisplay(reg, f)
	_ = d.Mount(imageMedia(), model.SizeOriginal)
	s := waitState(t, d, StateError)

	if s.URL != "" {
		t.Errorf("error state must not expose a url, got %q", s.URL)
	}
	if !errors.Is(d.Err(), mediaService.ErrFetchFailed) {
		t.Errorf("Err() = %v", d.Err())
	}
	time.Sleep(20 * time.Millisecond)
	if f.Calls() != 1 {
		t.Errorf("fetches = %d; want 1", f.Calls())
	}
	if reg.Len() != 0 {
		t.Error("nothing should be registered on failure")
	}
	d.Unmount()
}

func TestFetchNotAnImage_NoFile(t *testing.T) {
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{Err: mediaService.ErrNotAnImage}

	d := newDisplay(reg, f)
	_ = d.Mount(imageMedia(), model.SizeOriginal)
	s := waitState(t, d, StateNoFile)
	if s.URL != "" || reg.Len() != 0 {
		t.Errorf("snapshot = %+v, entries = %d", s, reg.Len())
	}
	d.Unmount()
}

func TestWait_HonoursContext(t *testing.T) {
	d := newDisplay(registry.New("http://x"), &mock.BlobFetcher{})
	_ = d.Mount(nil, model.SizeOriginal)
	v := d.Snapshot().Version

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s, err := d.Wait(ctx, v)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v; want deadline exceeded", err)
	}
	if s.Version != v {
		t.Errorf("version = %d; want %d", s.Version, v)
	}
}
